package diag

import (
	"encoding/json"
)

// JSONOutput represents the JSON structure for diagnostic output
type JSONOutput struct {
	Status   string  `json:"status"`
	Errors   List    `json:"errors"`
	Warnings List    `json:"warnings"`
	Summary  Summary `json:"summary"`
}

// Summary contains error and warning counts
type Summary struct {
	ErrorCount   int `json:"error_count"`
	WarningCount int `json:"warning_count"`
	TotalCount   int `json:"total_count"`
}

// FormatJSON formats the list as a status document
func (l List) FormatJSON() (string, error) {
	errorList := List{}
	warningList := List{}
	for _, d := range l {
		switch d.Severity {
		case SeverityError:
			errorList = append(errorList, d)
		case SeverityWarning:
			warningList = append(warningList, d)
		}
	}

	status := "success"
	if len(errorList) > 0 {
		status = "error"
	} else if len(warningList) > 0 {
		status = "warning"
	}

	output := JSONOutput{
		Status:   status,
		Errors:   errorList,
		Warnings: warningList,
		Summary: Summary{
			ErrorCount:   len(errorList),
			WarningCount: len(warningList),
			TotalCount:   len(l),
		},
	}

	data, err := json.MarshalIndent(output, "", "  ")
	if err != nil {
		return "", err
	}
	return string(data), nil
}
