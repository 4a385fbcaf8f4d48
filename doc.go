// Package ico implements a pure Go decoder for Windows icon (.ico) and
// cursor (.cur) files.
//
// An ICO/CUR file is a small header, a directory of entries and one payload
// per entry. Payloads are either complete PNG streams or DIB bitmaps stored
// without their file header, followed by a 1-bit AND transparency mask.
// Bitmap payloads are rebuilt into complete BMP streams and handed to a
// BMP codec; the AND mask is then reconciled with the decoded colours.
//
// Decoding every image, in directory order:
//
//	images, err := ico.DecodeAll(bytes.NewReader(data))
//	if err != nil {
//	    log.Fatal(err)
//	}
//	for _, img := range images {
//	    fmt.Println(img.Index, img.Bounds())
//	}
//
// The pixel codecs are pluggable through Options:
//
//	dec := ico.NewDecoder(ico.Options{Bitmap: ico.XImageBMPDecoder})
//	images, err := dec.DecodeAll(f)
//
// The package registers itself with the image package. image.Decode returns
// the largest image in the file:
//
//	import _ "github.com/ajroetker/go-ico"
//	img, _, err := image.Decode(reader)
package ico
