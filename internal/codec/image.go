package codec

import (
	"fmt"
	"image"
	"image/color"
	"image/draw"
	_ "image/gif"
	_ "image/jpeg"
	"image/png"
	"io"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"

	"github.com/conduit-lang/assets/internal/capability"
)

// ColorComponents describes the channel layout of Image.Data.
type ColorComponents int

const (
	// ComponentsDefault means the layout is inferred from the buffer size.
	ComponentsDefault ColorComponents = iota
	ComponentsGrey
	ComponentsGreyAlpha
	ComponentsRGB
	ComponentsRGBA
)

func (c ColorComponents) String() string {
	switch c {
	case ComponentsDefault:
		return "default"
	case ComponentsGrey:
		return "grey"
	case ComponentsGreyAlpha:
		return "grey+alpha"
	case ComponentsRGB:
		return "rgb"
	case ComponentsRGBA:
		return "rgba"
	default:
		return fmt.Sprintf("components(%d)", int(c))
	}
}

// Image is a decoded 8-bit pixel buffer, rows packed without padding.
type Image struct {
	Width      int
	Height     int
	Components ColorComponents
	Data       []byte
}

// pngLayout is the channel layout handed to the PNG encoder. Apart from
// pngInferred, each value equals its channel count.
type pngLayout int

const (
	pngInferred pngLayout = iota
	pngGrey
	pngGreyAlpha
	pngRGB
	pngRGBA
)

// pngLayouts must cover every ColorComponents value.
var pngLayouts = map[ColorComponents]pngLayout{
	ComponentsDefault:   pngInferred,
	ComponentsGrey:      pngGrey,
	ComponentsGreyAlpha: pngGreyAlpha,
	ComponentsRGB:       pngRGB,
	ComponentsRGBA:      pngRGBA,
}

// toPNGLayout panics on a layout missing from pngLayouts. Such a value can
// only come from a programming error, never from input data.
func toPNGLayout(c ColorComponents) pngLayout {
	layout, ok := pngLayouts[c]
	if !ok {
		panic(fmt.Sprintf("codec: no PNG layout for %s", c))
	}
	return layout
}

// ImageCodec decodes PNG, JPEG, GIF, BMP, TIFF and WebP into *Image and
// always encodes PNG.
type ImageCodec struct {
	desc capability.Descriptor
}

// NewImage creates an image codec.
func NewImage() *ImageCodec {
	return &ImageCodec{desc: capability.NewDescriptor("Image", ImageTag)}
}

// Capability implements capability.Capable.
func (c *ImageCodec) Capability() capability.Descriptor { return c.desc }

func (c *ImageCodec) Read(src io.Reader, tag capability.Tag) (any, error) {
	if _, ok := pick(tag, ImageTag); !ok {
		return nil, unsupported(c.desc.Name(), tag)
	}
	img, _, err := image.Decode(src)
	if err != nil {
		return nil, err
	}
	return fromImage(img), nil
}

func (c *ImageCodec) Write(dst io.Writer, v any, tag capability.Tag) error {
	img, ok := v.(*Image)
	if _, match := pick(tag, ImageTag); !match || !ok || img == nil {
		return unsupported(c.desc.Name(), tag)
	}
	out, err := img.toImage(toPNGLayout(img.Components))
	if err != nil {
		return err
	}
	return png.Encode(dst, out)
}

func fromImage(img image.Image) *Image {
	b := img.Bounds()
	w, h := b.Dx(), b.Dy()

	switch img.ColorModel() {
	case color.GrayModel, color.Gray16Model:
		gray := image.NewGray(image.Rect(0, 0, w, h))
		draw.Draw(gray, gray.Bounds(), img, b.Min, draw.Src)
		return &Image{Width: w, Height: h, Components: ComponentsGrey, Data: gray.Pix}
	}

	nrgba := image.NewNRGBA(image.Rect(0, 0, w, h))
	draw.Draw(nrgba, nrgba.Bounds(), img, b.Min, draw.Src)
	if !nrgba.Opaque() {
		return &Image{Width: w, Height: h, Components: ComponentsRGBA, Data: nrgba.Pix}
	}

	rgb := make([]byte, 0, w*h*3)
	for i := 0; i < len(nrgba.Pix); i += 4 {
		rgb = append(rgb, nrgba.Pix[i], nrgba.Pix[i+1], nrgba.Pix[i+2])
	}
	return &Image{Width: w, Height: h, Components: ComponentsRGB, Data: rgb}
}

func (img *Image) toImage(layout pngLayout) (image.Image, error) {
	if img.Width <= 0 || img.Height <= 0 {
		return nil, fmt.Errorf("codec: invalid image size %dx%d", img.Width, img.Height)
	}
	pixels := img.Width * img.Height

	if layout == pngInferred {
		switch len(img.Data) / pixels {
		case 1:
			layout = pngGrey
		case 2:
			layout = pngGreyAlpha
		case 3:
			layout = pngRGB
		case 4:
			layout = pngRGBA
		default:
			return nil, fmt.Errorf("codec: cannot infer layout of %d bytes for %dx%d", len(img.Data), img.Width, img.Height)
		}
	}

	channels := int(layout)
	if len(img.Data) != pixels*channels {
		return nil, fmt.Errorf("codec: image data is %d bytes, want %d", len(img.Data), pixels*channels)
	}

	rect := image.Rect(0, 0, img.Width, img.Height)
	if layout == pngGrey {
		return &image.Gray{Pix: img.Data, Stride: img.Width, Rect: rect}, nil
	}

	out := image.NewNRGBA(rect)
	for p := 0; p < pixels; p++ {
		px := img.Data[p*channels : (p+1)*channels]
		dst := out.Pix[p*4 : p*4+4]
		switch layout {
		case pngGreyAlpha:
			dst[0], dst[1], dst[2], dst[3] = px[0], px[0], px[0], px[1]
		case pngRGB:
			dst[0], dst[1], dst[2], dst[3] = px[0], px[1], px[2], 0xff
		case pngRGBA:
			copy(dst, px)
		}
	}
	return out, nil
}
