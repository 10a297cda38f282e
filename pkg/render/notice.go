package render

// NoticeLevel classifies a Notice for styling.
type NoticeLevel string

const (
	NoticeSuccess NoticeLevel = "success"
	NoticeError   NoticeLevel = "error"
)

// Notice is a user-visible outcome shown above or below the form.
type Notice struct {
	Level   NoticeLevel `json:"level"`
	Message string      `json:"message"`
}

// SuccessNotice builds a success notice.
func SuccessNotice(message string) *Notice {
	return &Notice{Level: NoticeSuccess, Message: message}
}

// ErrorNotice builds an error notice.
func ErrorNotice(message string) *Notice {
	return &Notice{Level: NoticeError, Message: message}
}

// IsError reports whether the notice describes a failure.
func (n *Notice) IsError() bool {
	return n != nil && n.Level == NoticeError
}
