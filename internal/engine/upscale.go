package engine

import (
	"context"
	"fmt"
	"image"

	"github.com/born-ml/superres/internal/logging"
	"github.com/born-ml/superres/internal/nn"
	"github.com/born-ml/superres/internal/tensor"
	"golang.org/x/image/draw"
)

// Scale is the resize factor applied before refinement.
const Scale = 2

// Upscaler doubles an image with nearest-neighbour sampling and refines the
// result with a model.
type Upscaler struct {
	engine *Engine
	model  *nn.Model
}

// NewUpscaler creates an Upscaler. The model must map 3 planes to 3 planes.
func NewUpscaler(e *Engine, model *nn.Model) (*Upscaler, error) {
	if model.InputPlanes() != 3 {
		return nil, tensor.Contract("upscaler", tensor.ErrDepthMismatch, "model takes %d planes, want 3", model.InputPlanes())
	}
	if model.OutputPlanes() != 3 {
		return nil, tensor.Contract("upscaler", tensor.ErrOutputDepth, "model produces %d planes, want 3", model.OutputPlanes())
	}
	return &Upscaler{engine: e, model: model}, nil
}

// Upscale returns img resized by Scale and refined by the model.
func (u *Upscaler) Upscale(ctx context.Context, img image.Image) (*image.RGBA, error) {
	src := img.Bounds()
	if src.Empty() {
		return nil, tensor.Contract("upscale", tensor.ErrShapeMismatch, "empty image %v", src)
	}
	resized := image.NewRGBA(image.Rect(0, 0, src.Dx()*Scale, src.Dy()*Scale))
	draw.NearestNeighbor.Scale(resized, resized.Bounds(), img, src, draw.Src, nil)
	return u.Refine(ctx, resized)
}

// Refine runs the model over img without resizing.
func (u *Upscaler) Refine(ctx context.Context, img *image.RGBA) (*image.RGBA, error) {
	b := u.engine.Backend()
	w, h := img.Bounds().Dx(), img.Bounds().Dy()
	log := logging.Logger()

	in, err := b.Allocate(w, h, 1, tensor.RGBA8)
	if err != nil {
		return nil, fmt.Errorf("allocate input: %w", err)
	}
	defer in.Release()
	if err := b.Upload(in, packedPix(img)); err != nil {
		return nil, err
	}

	planes, err := Split(ctx, b, in)
	if err != nil {
		return nil, err
	}
	defer planes.Release()

	log.Debug("refining", "width", w, "height", h, "layers", u.model.Len(), "backend", b.Name())
	refined, err := u.engine.Run(ctx, u.model, planes)
	if err != nil {
		return nil, err
	}
	defer refined.Release()

	rgba, err := Combine(ctx, b, refined)
	if err != nil {
		return nil, err
	}
	defer rgba.Release()

	if err := b.Synchronize(ctx, rgba); err != nil {
		return nil, fmt.Errorf("synchronize: %w", err)
	}
	pix, err := b.ReadRGBA(rgba)
	if err != nil {
		return nil, err
	}

	out := image.NewRGBA(image.Rect(0, 0, w, h))
	copy(out.Pix, pix)
	return out, nil
}

// packedPix returns the pixels of img without row padding.
func packedPix(img *image.RGBA) []byte {
	r := img.Bounds()
	rowBytes := 4 * r.Dx()
	if img.Stride == rowBytes && r.Min == (image.Point{}) {
		return img.Pix[:rowBytes*r.Dy()]
	}
	pix := make([]byte, 0, rowBytes*r.Dy())
	for y := r.Min.Y; y < r.Max.Y; y++ {
		off := img.PixOffset(r.Min.X, y)
		pix = append(pix, img.Pix[off:off+rowBytes]...)
	}
	return pix
}
