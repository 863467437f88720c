package render

// cellShaderSource is the WGSL program shared by both passes. The
// vertex stage maps pixel coordinates to clip space; fs_bg draws the
// background and line layer, fs_glyph the glyph layer.
const cellShaderSource = `
struct Uniforms {
    screen: vec4<f32>,
};

@group(0) @binding(0) var<uniform> uniforms: Uniforms;
@group(0) @binding(1) var atlas_tex: texture_2d<f32>;
@group(0) @binding(2) var atlas_samp: sampler;

struct VertexInput {
    @location(0) position: vec2<f32>,
    @location(1) tex: vec2<f32>,
    @location(2) underline: vec2<f32>,
    @location(3) bg: vec4<f32>,
    @location(4) fg: vec4<f32>,
    @location(5) has_color: f32,
};

struct VertexOutput {
    @builtin(position) position: vec4<f32>,
    @location(0) tex: vec2<f32>,
    @location(1) underline: vec2<f32>,
    @location(2) bg: vec4<f32>,
    @location(3) fg: vec4<f32>,
    @location(4) has_color: f32,
};

@vertex
fn vs_main(in: VertexInput) -> VertexOutput {
    var out: VertexOutput;
    let x = in.position.x / uniforms.screen.x * 2.0 - 1.0;
    let y = 1.0 - in.position.y / uniforms.screen.y * 2.0;
    out.position = vec4<f32>(x, y, 0.0, 1.0);
    out.tex = in.tex;
    out.underline = in.underline;
    out.bg = in.bg;
    out.fg = in.fg;
    out.has_color = in.has_color;
    return out;
}

@fragment
fn fs_bg(in: VertexOutput) -> @location(0) vec4<f32> {
    let line = textureSample(atlas_tex, atlas_samp, in.underline);
    let rgb = mix(in.bg.rgb, in.fg.rgb, line.a);
    return vec4<f32>(rgb, 1.0);
}

@fragment
fn fs_glyph(in: VertexOutput) -> @location(0) vec4<f32> {
    let s = textureSample(atlas_tex, atlas_samp, in.tex);
    if (in.has_color > 0.5) {
        return s;
    }
    return vec4<f32>(in.fg.rgb * s.a, s.a);
}
`
