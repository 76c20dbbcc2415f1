package constants

// ResultStatus is the per-file outcome stored in the result journal.
type ResultStatus string

// Stable values (store these exact strings in the journal).
const (
	StatusOK        ResultStatus = "OK"         // reply recorded
	StatusNoText    ResultStatus = "NO_TEXT"    // OCR ran but found nothing
	StatusOCRFailed ResultStatus = "OCR_FAILED" // conversion, decode or OCR failed
	StatusLLMFailed ResultStatus = "LLM_FAILED" // model call or reply validation failed
)
