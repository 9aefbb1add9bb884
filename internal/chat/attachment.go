package chat

import (
	"encoding/base64"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/chatforge/chatforge/internal/ai"
	"github.com/chatforge/chatforge/internal/document"
)

// Extracted document text folded into a message is capped here.
const documentTextCap = 100000

// Attachment is one uploaded file accompanying a chat message.
type Attachment struct {
	Filename string
	Data     []byte
}

var imageMediaTypes = map[string]string{
	".png":  "image/png",
	".jpg":  "image/jpeg",
	".jpeg": "image/jpeg",
	".gif":  "image/gif",
	".webp": "image/webp",
}

// imageBlock returns the multimodal content block when the attachment
// is an image, nil otherwise.
func imageBlock(att *Attachment) *ai.Image {
	mediaType, ok := imageMediaTypes[strings.ToLower(filepath.Ext(att.Filename))]
	if !ok {
		return nil
	}
	return &ai.Image{
		MediaType: mediaType,
		Base64:    base64.StdEncoding.EncodeToString(att.Data),
	}
}

// documentText extracts the attachment's text and appends it to the
// message under a labeled marker, truncated to the cap. Extraction
// failure degrades to an inline error note; the turn continues.
func documentText(extractor document.Extractor, att *Attachment, message string) string {
	if extractor == nil {
		return fmt.Sprintf("%s\n\n[Attached document: %s — text extraction failed]", message, att.Filename)
	}
	text, err := extractor.ExtractText(att.Filename, att.Data)
	if err != nil {
		return fmt.Sprintf("%s\n\n[Attached document: %s — text extraction failed]", message, att.Filename)
	}
	return fmt.Sprintf("%s\n\n[Attached document: %s]\n%s", message, att.Filename, truncateRunes(text, documentTextCap))
}

// truncateRunes caps a string at max characters, never cutting inside a
// multi-byte rune.
func truncateRunes(s string, max int) string {
	if len(s) <= max {
		return s
	}
	count := 0
	for i := range s {
		if count == max {
			return s[:i]
		}
		count++
	}
	return s
}

// displayContent is the decorated form persisted for a user message
// that carried an attachment.
func displayContent(message string, att *Attachment) string {
	if att == nil {
		return message
	}
	return fmt.Sprintf("%s\n\n[Attachment: %s]", message, att.Filename)
}
