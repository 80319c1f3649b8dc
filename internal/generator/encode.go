package generator

import (
	"encoding/base64"
	"fmt"
	"path"
	"strings"

	"github.com/JaimeStill/document-context/pkg/document"
	"github.com/JaimeStill/document-context/pkg/encoding"
)

var keyContentTypes = map[string]string{
	".jpg":  "image/jpeg",
	".jpeg": "image/jpeg",
	".png":  "image/png",
	".webp": "image/webp",
	".gif":  "image/gif",
	".heic": "image/heic",
}

func contentTypeForKey(key string) string {
	if ct, ok := keyContentTypes[strings.ToLower(path.Ext(key))]; ok {
		return ct
	}
	return "application/octet-stream"
}

// EncodeDataURI renders image bytes as a data URI for vision prompts. The
// document encoder covers the formats it knows; the remaining image types
// build the URI directly.
func EncodeDataURI(data []byte, contentType string) string {
	switch contentType {
	case "image/png":
		if uri, err := encoding.EncodeImageDataURI(data, document.PNG); err == nil {
			return uri
		}
	case "image/jpeg":
		if uri, err := encoding.EncodeImageDataURI(data, document.JPEG); err == nil {
			return uri
		}
	}

	return fmt.Sprintf("data:%s;base64,%s", contentType, base64.StdEncoding.EncodeToString(data))
}
