package loader

import (
	"fmt"
	"io"
	"mime"
	"mime/multipart"
	"net/mail"
	"os"
	"path/filepath"
	"strings"

	"askdoc/src/core/document"
)

// loadEmail parses a .eml file into a single unit carrying the subject,
// sender and plain-text body.
func loadEmail(path string) ([]document.Unit, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, &document.LoadError{Source: path, Err: err}
	}
	defer f.Close()

	msg, err := mail.ReadMessage(f)
	if err != nil {
		return nil, &document.LoadError{Source: path, Err: fmt.Errorf("parse email: %w", err)}
	}

	subject := msg.Header.Get("Subject")
	sender := msg.Header.Get("From")

	body, err := plainTextBody(msg)
	if err != nil {
		return nil, &document.LoadError{Source: path, Err: fmt.Errorf("read email body: %w", err)}
	}

	content := fmt.Sprintf("Subject: %s\nFrom: %s\n\n%s", subject, sender, body)
	return []document.Unit{{
		Text: content,
		Metadata: map[string]any{
			document.MetaSource: filepath.Base(path),
			"subject":           subject,
			"sender":            sender,
		},
	}}, nil
}

// plainTextBody returns the first text/plain part of a multipart message, or
// the whole body for single-part messages.
func plainTextBody(msg *mail.Message) (string, error) {
	contentType := msg.Header.Get("Content-Type")
	if contentType == "" {
		data, err := io.ReadAll(msg.Body)
		return string(data), err
	}

	mediaType, params, err := mime.ParseMediaType(contentType)
	if err != nil {
		return "", err
	}

	if !strings.HasPrefix(mediaType, "multipart/") {
		data, err := io.ReadAll(msg.Body)
		return string(data), err
	}

	reader := multipart.NewReader(msg.Body, params["boundary"])
	for {
		part, err := reader.NextPart()
		if err == io.EOF {
			return "", nil
		}
		if err != nil {
			return "", err
		}

		partType, _, err := mime.ParseMediaType(part.Header.Get("Content-Type"))
		if err != nil {
			continue
		}
		if partType == "text/plain" {
			data, err := io.ReadAll(part)
			if err != nil {
				return "", err
			}
			return string(data), nil
		}
	}
}
