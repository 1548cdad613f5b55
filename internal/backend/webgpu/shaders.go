package webgpu

// WGSL compute shaders for the three pipelines.
//
// Resource layout:
//   - RGBA8 resources are array<u32>, one packed pixel per element (R in the
//     low byte), so unpack4x8unorm/pack4x8unorm do the unorm conversion.
//   - Float32 resources are array<f32>, plane-major: plane d starts at
//     d*width*height.

// Tile shape of every dispatch. 16x16 stays within the default
// maxComputeInvocationsPerWorkgroup of 256.
const (
	tileWidth  = 16
	tileHeight = 16
)

// splitShader de-interleaves RGBA8 pixels into R, G and B planes.
const splitShader = `
struct Params {
    width: u32,
    height: u32,
}

@group(0) @binding(0) var<storage, read> pixels: array<u32>;
@group(0) @binding(1) var<storage, read_write> planes: array<f32>;
@group(0) @binding(2) var<uniform> params: Params;

@compute @workgroup_size(16, 16)
fn main(@builtin(global_invocation_id) gid: vec3<u32>) {
    if (gid.x >= params.width || gid.y >= params.height) {
        return;
    }
    let n = params.width * params.height;
    let idx = gid.y * params.width + gid.x;
    let rgba = unpack4x8unorm(pixels[idx]);
    planes[idx] = rgba.r;
    planes[n + idx] = rgba.g;
    planes[2u * n + idx] = rgba.b;
}
`

// combineShader interleaves R, G and B planes into opaque RGBA8 pixels.
const combineShader = `
struct Params {
    width: u32,
    height: u32,
}

@group(0) @binding(0) var<storage, read> planes: array<f32>;
@group(0) @binding(1) var<storage, read_write> pixels: array<u32>;
@group(0) @binding(2) var<uniform> params: Params;

@compute @workgroup_size(16, 16)
fn main(@builtin(global_invocation_id) gid: vec3<u32>) {
    if (gid.x >= params.width || gid.y >= params.height) {
        return;
    }
    let n = params.width * params.height;
    let idx = gid.y * params.width + gid.x;
    let rgb = vec3<f32>(planes[idx], planes[n + idx], planes[2u * n + idx]);
    pixels[idx] = pack4x8unorm(vec4<f32>(clamp(rgb, vec3<f32>(0.0), vec3<f32>(1.0)), 1.0));
}
`

// convolveShader computes one output plane from the whole input stack:
// out = act(bias + sum_d conv3x3(in[d], weights[d])), zero padded.
const convolveShader = `
struct Params {
    width: u32,
    height: u32,
    depth: u32,
    _pad0: u32,
    bias: f32,
    slope: f32,
    _pad1: f32,
    _pad2: f32,
}

@group(0) @binding(0) var<storage, read> input: array<f32>;
@group(0) @binding(1) var<storage, read_write> output: array<f32>;
@group(0) @binding(2) var<storage, read> weights: array<f32>;
@group(0) @binding(3) var<uniform> params: Params;

fn sample(base: u32, x: i32, y: i32) -> f32 {
    if (x < 0 || y < 0 || x >= i32(params.width) || y >= i32(params.height)) {
        return 0.0;
    }
    return input[base + u32(y) * params.width + u32(x)];
}

@compute @workgroup_size(16, 16)
fn main(@builtin(global_invocation_id) gid: vec3<u32>) {
    if (gid.x >= params.width || gid.y >= params.height) {
        return;
    }
    let x = i32(gid.x);
    let y = i32(gid.y);
    let n = params.width * params.height;

    var sum = params.bias;
    for (var d = 0u; d < params.depth; d = d + 1u) {
        let base = d * n;
        let w = d * 9u;
        for (var ky = 0; ky < 3; ky = ky + 1) {
            for (var kx = 0; kx < 3; kx = kx + 1) {
                sum = sum + sample(base, x + kx - 1, y + ky - 1) * weights[w + u32(ky * 3 + kx)];
            }
        }
    }
    if (sum < 0.0) {
        sum = sum * params.slope;
    }
    output[gid.y * params.width + gid.x] = sum;
}
`
