package typegraph

// Service is a service definition
type Service struct {
	Name    string
	File    string
	Methods []*Method
	Options *MessageValue
}

// Method is one RPC of a service. Input and Output are message type ids.
type Method struct {
	Name            string
	FullName        string
	Input           TypeID
	Output          TypeID
	ClientStreaming bool
	ServerStreaming bool
	Options         *MessageValue
}

// MethodByName returns the method with the given simple name, or nil
func (s *Service) MethodByName(name string) *Method {
	for _, m := range s.Methods {
		if m.Name == name {
			return m
		}
	}
	return nil
}
