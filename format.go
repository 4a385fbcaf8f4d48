package ico

// PayloadKind is the encoding of an entry's payload. The set is closed:
// ICO/CUR payloads are either PNG streams or headless DIBs.
type PayloadKind uint8

const (
	KindBitmap PayloadKind = iota
	KindPNG
)

func (k PayloadKind) String() string {
	switch k {
	case KindBitmap:
		return "bmp"
	case KindPNG:
		return "png"
	default:
		return "unknown"
	}
}

// Magic numbers. Only the first two bytes of the PNG signature are checked;
// the rest is the PNG codec's business. A headless DIB has no magic of its
// own, so "BM" is only ever checked on reconstructed streams.
var (
	magicPNG = [2]byte{0x89, 0x50}
	magicBMP = [2]byte{'B', 'M'}
)

// Classify inspects the first two bytes of a payload. Anything that does
// not start like a PNG is treated as a DIB.
func Classify(payload []byte) (PayloadKind, error) {
	if len(payload) < 2 {
		return 0, &FormatError{
			Field:  "magic",
			Value:  int64(len(payload)),
			Reason: "magic numbers unreadable",
		}
	}
	if payload[0] == magicPNG[0] && payload[1] == magicPNG[1] {
		return KindPNG, nil
	}
	return KindBitmap, nil
}
