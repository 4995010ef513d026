package domain

type Category string

const (
	CategoryNoFileSelected    Category = "no_file_selected"
	CategorySuccess           Category = "success"
	CategoryDuplicate         Category = "duplicate"
	CategoryValidationWarning Category = "validation_warning"
	CategoryServerError       Category = "server_error"
	CategoryUnknownError      Category = "unknown_error"
)

const (
	MessageNoFileSelected = "Please select a file first."
	MessageUploaded       = "File uploaded successfully!"
	MessageDuplicated     = "File duplicated."
	MessageUploadFailed   = "File upload failed!"
	MessageUnexpected     = "Something went wrong."
	MessageUnknownError   = "An unknown error occurred."
)

// Outcome is the user-facing result of one submission attempt.
type Outcome struct {
	Category Category `json:"category"`
	Text     string   `json:"text"`
}

func NoFileSelected() Outcome {
	return Outcome{Category: CategoryNoFileSelected, Text: MessageNoFileSelected}
}

func Success(text string) Outcome {
	return Outcome{Category: CategorySuccess, Text: text}
}

func Duplicate(text string) Outcome {
	return Outcome{Category: CategoryDuplicate, Text: text}
}

func ValidationWarning(text string) Outcome {
	return Outcome{Category: CategoryValidationWarning, Text: text}
}

func ServerError(text string) Outcome {
	return Outcome{Category: CategoryServerError, Text: text}
}

func UnknownError(text string) Outcome {
	return Outcome{Category: CategoryUnknownError, Text: text}
}

func (o Outcome) IsSuccess() bool {
	return o.Category == CategorySuccess
}
