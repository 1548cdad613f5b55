package webgpu

import (
	"encoding/binary"
	"strings"
	"testing"

	"github.com/gogpu/naga"
)

// TestShadersCompile checks that every pipeline's WGSL compiles to SPIR-V.
func TestShadersCompile(t *testing.T) {
	shaders := map[string]string{
		"split":    splitShader,
		"combine":  combineShader,
		"convolve": convolveShader,
	}

	for name, src := range shaders {
		t.Run(name, func(t *testing.T) {
			spirv, err := naga.Compile(src)
			if err != nil {
				if strings.Contains(err.Error(), "not yet implemented") || strings.Contains(err.Error(), "not supported") {
					t.Skipf("naga feature not yet implemented: %v", err)
				}
				t.Fatalf("failed to compile %s shader: %v", name, err)
			}
			if len(spirv) < 4 {
				t.Fatalf("SPIR-V output too short: %d bytes", len(spirv))
			}
			if magic := binary.LittleEndian.Uint32(spirv[:4]); magic != 0x07230203 {
				t.Errorf("SPIR-V magic = 0x%08X, want 0x07230203", magic)
			}
		})
	}
}

func TestShaderTileMatchesWorkgroupSize(t *testing.T) {
	for _, src := range []string{splitShader, combineShader, convolveShader} {
		if !strings.Contains(src, "@workgroup_size(16, 16)") {
			t.Errorf("shader workgroup size does not match the %dx%d dispatch tile", tileWidth, tileHeight)
		}
	}
}
