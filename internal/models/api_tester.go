package models

// ApiTestRequest holds the editable fields of the API tester form. Headers
// and Body are JSON text as typed by the user.
type ApiTestRequest struct {
	Method  string `json:"method"`
	URL     string `json:"url"`
	Headers string `json:"headers"`
	Body    string `json:"body"`
}

// ApiTestResult is what the tester shows after a request completes.
type ApiTestResult struct {
	Status   int    `json:"status"`
	Response string `json:"response"`
}
