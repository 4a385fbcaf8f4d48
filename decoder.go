package ico

import (
	"bytes"
	"errors"
	"image"
	"image/color"
	"image/png"
	"io"

	"github.com/hashicorp/go-multierror"
	"github.com/rs/zerolog"
)

var errNoImage = errors.New("codec returned no image")

// Options configures a Decoder. Zero values select the defaults.
type Options struct {
	// Bitmap decodes reconstructed BMP streams. Defaults to GoBMPDecoder.
	Bitmap BitmapDecoder
	// PNG decodes PNG payloads. Defaults to StdPNGDecoder.
	PNG PNGDecoder
	// Logger receives per-entry debug events and layout warnings.
	// Defaults to a disabled logger.
	Logger *zerolog.Logger
}

// Decoder decodes ICO and CUR files. It holds no per-file state and is safe
// for concurrent use.
type Decoder struct {
	bitmap BitmapDecoder
	png    PNGDecoder
	log    zerolog.Logger
}

// NewDecoder creates a Decoder, filling in defaults for unset options.
func NewDecoder(opts Options) *Decoder {
	d := &Decoder{
		bitmap: opts.Bitmap,
		png:    opts.PNG,
		log:    zerolog.Nop(),
	}
	if d.bitmap == nil {
		d.bitmap = GoBMPDecoder
	}
	if d.png == nil {
		d.png = StdPNGDecoder
	}
	if opts.Logger != nil {
		d.log = *opts.Logger
	}
	return d
}

var defaultDecoder = NewDecoder(Options{})

// DecodeAll decodes every image of the file in src with the default codecs.
// See Decoder.DecodeAll.
func DecodeAll(src io.ReaderAt) ([]*Image, error) {
	return defaultDecoder.DecodeAll(src)
}

// DecodeAll decodes every image of the file in src, in directory order.
//
// The call is atomic: the first entry that fails aborts decoding and the
// error, an *EntryError carrying the entry index, is returned without any
// images. Payloads are read by absolute offset, so out-of-order and
// overlapping entries are supported; they are logged at warn level.
func (d *Decoder) DecodeAll(src io.ReaderAt) ([]*Image, error) {
	c, err := Parse(src)
	if err != nil {
		return nil, err
	}
	d.logLayout(c)

	images := make([]*Image, 0, len(c.Entries))
	for i := range c.Entries {
		img, err := d.decodeEntry(src, c, i)
		if err != nil {
			return nil, &EntryError{Index: i, Err: err}
		}
		images = append(images, img)
	}
	return images, nil
}

// DecodeEach decodes every image it can. Entries that fail are skipped and
// their errors, each an *EntryError, are collected into a
// *multierror.Error. Container-level errors are returned as they are, with
// no images.
func (d *Decoder) DecodeEach(src io.ReaderAt) ([]*Image, error) {
	c, err := Parse(src)
	if err != nil {
		return nil, err
	}
	d.logLayout(c)

	var errs *multierror.Error
	images := make([]*Image, 0, len(c.Entries))
	for i := range c.Entries {
		img, err := d.decodeEntry(src, c, i)
		if err != nil {
			d.log.Warn().Err(err).Int("entry", i).Msg("skipping entry")
			errs = multierror.Append(errs, &EntryError{Index: i, Err: err})
			continue
		}
		images = append(images, img)
	}
	return images, errs.ErrorOrNil()
}

// Decode decodes the best image of an ICO or CUR file: the largest one,
// and for icons of equal size the one with the most bits per pixel.
func Decode(r io.Reader) (image.Image, error) {
	return defaultDecoder.Decode(r)
}

// Decode decodes the best image of the file read from r.
func (d *Decoder) Decode(r io.Reader) (image.Image, error) {
	src := NewReaderSource(r)
	c, err := Parse(src)
	if err != nil {
		return nil, err
	}
	i, err := c.best()
	if err != nil {
		return nil, err
	}
	img, err := d.decodeEntry(src, c, i)
	if err != nil {
		return nil, &EntryError{Index: i, Err: err}
	}
	return img, nil
}

// DecodeConfig returns the dimensions of the image Decode would return,
// reading only the headers of its payload.
func DecodeConfig(r io.Reader) (image.Config, error) {
	src := NewReaderSource(r)
	c, err := Parse(src)
	if err != nil {
		return image.Config{}, err
	}
	i, err := c.best()
	if err != nil {
		return image.Config{}, err
	}

	cfg, err := payloadConfig(src, c, i)
	if err != nil {
		return image.Config{}, &EntryError{Index: i, Err: err}
	}
	return cfg, nil
}

func payloadConfig(src io.ReaderAt, c *Container, i int) (image.Config, error) {
	payload, err := c.readPayload(src, i)
	if err != nil {
		return image.Config{}, err
	}
	kind, err := Classify(payload)
	if err != nil {
		return image.Config{}, err
	}

	if kind == KindPNG {
		cfg, err := png.DecodeConfig(bytes.NewReader(payload))
		if err != nil {
			return image.Config{}, &DecodeError{Kind: KindPNG, Err: err}
		}
		cfg.ColorModel = color.NRGBAModel
		return cfg, nil
	}

	h, err := readDIBHeader(newByteReader(payload, 0))
	if err != nil {
		return image.Config{}, err
	}
	return image.Config{
		ColorModel: color.NRGBAModel,
		Width:      int(h.Width),
		Height:     h.EffectiveHeight(),
	}, nil
}

// best picks the entry Decode returns.
func (c *Container) best() (int, error) {
	if len(c.Entries) == 0 {
		return 0, &FormatError{Field: "count", Value: 0, Reason: "file contains no images"}
	}
	best, bestArea := 0, -1
	for i, e := range c.Entries {
		w, h := e.Dimensions()
		area := w * h
		switch {
		case area > bestArea:
		case area == bestArea && c.Header.Type == TypeIcon && e.BitCount > c.Entries[best].BitCount:
		default:
			continue
		}
		best, bestArea = i, area
	}
	return best, nil
}

// decodeEntry reads, classifies and decodes entry i.
func (d *Decoder) decodeEntry(src io.ReaderAt, c *Container, i int) (*Image, error) {
	e := c.Entries[i]
	payload, err := c.readPayload(src, i)
	if err != nil {
		return nil, err
	}
	kind, err := Classify(payload)
	if err != nil {
		return nil, err
	}

	d.log.Debug().
		Int("entry", i).
		Str("kind", kind.String()).
		Uint32("offset", e.Offset).
		Uint32("size", e.Size).
		Msg("decoding entry")

	var pix *image.NRGBA
	switch kind {
	case KindPNG:
		pix, err = d.decodePNG(payload)
	default:
		pix, err = d.decodeBitmap(payload)
	}
	if err != nil {
		return nil, err
	}

	return &Image{NRGBA: pix, Index: i, Entry: e, Kind: kind}, nil
}

// decodePNG passes a PNG payload to the PNG codec unchanged.
func (d *Decoder) decodePNG(payload []byte) (*image.NRGBA, error) {
	img, err := d.png.DecodePNG(payload)
	if err != nil {
		return nil, &DecodeError{Kind: KindPNG, Err: err}
	}
	if img == nil {
		return nil, &DecodeError{Kind: KindPNG, Err: errNoImage}
	}
	return toNRGBA(img), nil
}

// decodeBitmap rebuilds the BMP stream, decodes it and applies the AND
// mask.
func (d *Decoder) decodeBitmap(payload []byte) (*image.NRGBA, error) {
	bm, err := ReconstructBitmap(payload)
	if err != nil {
		return nil, err
	}

	// 32 bpp icons may omit the mask; everything else must carry one.
	h := bm.Header
	if bm.Mask == nil && h.BitCount != 32 {
		return nil, bm.missingMask()
	}

	img, err := d.bitmap.DecodeBitmap(bm.Stream)
	if err != nil {
		return nil, &DecodeError{Kind: KindBitmap, Err: err}
	}
	if img == nil {
		return nil, &DecodeError{Kind: KindBitmap, Err: errNoImage}
	}

	mask := newANDMask(bm.Mask, bm.MaskStride, h.EffectiveHeight())
	return reconcileAlpha(img, h.hasAlpha(), mask), nil
}

func (d *Decoder) logLayout(c *Container) {
	for i, l := range c.Layout() {
		if !l.OutOfOrder && !l.OverlapsDirectory {
			continue
		}
		e := c.Entries[i]
		d.log.Warn().
			Int("entry", i).
			Uint32("offset", e.Offset).
			Uint32("size", e.Size).
			Bool("out_of_order", l.OutOfOrder).
			Bool("overlaps_directory", l.OverlapsDirectory).
			Msg("unusual payload layout")
	}
}

func init() {
	image.RegisterFormat("ico", "\x00\x00\x01\x00", Decode, DecodeConfig)
	image.RegisterFormat("cur", "\x00\x00\x02\x00", Decode, DecodeConfig)
}
