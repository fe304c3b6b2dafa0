package domain

import "errors"

var (
	// ErrRejectedUpload is user guidance, not a failure: the declared type is not plain text.
	ErrRejectedUpload = errors.New("upload is not a plain-text file")
	// ErrDecode means the uploaded bytes are not valid UTF-8.
	ErrDecode = errors.New("decode upload")
	// ErrInference covers every failure of the summarization capability.
	ErrInference = errors.New("summarize text")
	// ErrModelConstruction is fatal at startup; no request can be served without the model.
	ErrModelConstruction = errors.New("load summarization model")
)
