package image

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"
)

// Image is a generated picture held in memory only.
type Image struct {
	Bitmap    image.Image
	Data      []byte
	MediaType string
}

func Decode(data []byte) (*Image, error) {
	bitmap, format, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("decoding image: %w", err)
	}
	return &Image{Bitmap: bitmap, Data: data, MediaType: "image/" + format}, nil
}

func (i *Image) Width() int { return i.Bitmap.Bounds().Dx() }
func (i *Image) Height() int { return i.Bitmap.Bounds().Dy() }

func (i *Image) DataURI() string {
	return "data:" + i.MediaType + ";base64," + base64.StdEncoding.EncodeToString(i.Data)
}
