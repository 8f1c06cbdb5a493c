package dto

// EvalFormulaRequest carries free text to run through the formula evaluator
// (live preview while the user edits an entry).
type EvalFormulaRequest struct {
	Formula string `json:"formula"`
}

// EvalFormulaResponse mirrors the evaluator's total result: either a finite
// value or a human-readable error, never both.
type EvalFormulaResponse struct {
	Ok    bool    `json:"ok"`
	Value float64 `json:"value,omitempty"`
	Error string  `json:"error,omitempty"`
}
