package extractor

import (
	"encoding/xml"
	"fmt"
	"io"
	"os"
)

type backup struct {
	Messages []Message `xml:"sms"`
}

// ReadMessages decodes the <sms> elements directly under the document root.
func ReadMessages(r io.Reader) ([]Message, error) {
	var b backup
	if err := xml.NewDecoder(r).Decode(&b); err != nil {
		return nil, fmt.Errorf("decode sms backup: %w", err)
	}
	return b.Messages, nil
}

// ReadFile is ReadMessages over a file on disk.
func ReadFile(path string) ([]Message, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open sms backup: %w", err)
	}
	defer f.Close()
	return ReadMessages(f)
}
