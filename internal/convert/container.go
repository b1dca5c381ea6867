// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package convert

import (
	"bytes"
	"context"
	"fmt"
	"path/filepath"

	"github.com/pdiddy/docconvert/internal/container"
	"github.com/pdiddy/docconvert/pkg/types"
)

// DefaultImage is the container image used by the container backend.
const DefaultImage = "pdf2docx:latest"

const (
	mountIn   = "/in"
	mountOut  = "/out"
	mountWork = "/work"
)

// ContainerConverter runs pdf2docx inside a docker or podman image. The
// input directory is mounted read-only and the output directory read-write.
type ContainerConverter struct {
	runtime container.Runtime
	image   string
}

// NewContainerConverter creates a converter that uses rt to run image. It
// verifies that the image exists locally before returning.
func NewContainerConverter(ctx context.Context, rt container.Runtime, image string) (*ContainerConverter, error) {
	if image == "" {
		image = DefaultImage
	}
	if err := rt.ImageExists(ctx, image); err != nil {
		return nil, fmt.Errorf("pdf2docx image not available in %s: %w", rt.Name(), err)
	}
	return &ContainerConverter{runtime: rt, image: image}, nil
}

func (c *ContainerConverter) Convert(ctx context.Context, pdfPath, docxPath string) error {
	in, err := filepath.Abs(pdfPath)
	if err != nil {
		return fmt.Errorf("resolving %s: %w", pdfPath, err)
	}
	out, err := filepath.Abs(docxPath)
	if err != nil {
		return fmt.Errorf("resolving %s: %w", docxPath, err)
	}

	mounts, inArg, outArg := containerMounts(in, out)
	var stderr bytes.Buffer
	args := []string{"pdf2docx", "convert", inArg, outArg}
	if err := c.runtime.Run(ctx, c.image, mounts, args, &stderr); err != nil {
		return &types.ConversionError{Stage: "pdf2docx", Err: withStderr(err, stderr.Bytes())}
	}
	return requireOutput("pdf2docx", out)
}

// containerMounts maps the input and output files into the container. A
// shared directory is mounted once, read-write.
func containerMounts(in, out string) ([]container.Mount, string, string) {
	inDir, outDir := filepath.Dir(in), filepath.Dir(out)
	if inDir == outDir {
		return []container.Mount{{Host: inDir, Container: mountWork}},
			mountWork + "/" + filepath.Base(in),
			mountWork + "/" + filepath.Base(out)
	}
	return []container.Mount{
			{Host: inDir, Container: mountIn, ReadOnly: true},
			{Host: outDir, Container: mountOut},
		},
		mountIn + "/" + filepath.Base(in),
		mountOut + "/" + filepath.Base(out)
}

