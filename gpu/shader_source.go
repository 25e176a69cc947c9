// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package gpu

import (
	"strings"
	"text/template"
)

// variantWGSL is the uber-shader; capability bits switch sections on.
//
// Uniform layout (group 0, binding 0), all column-major:
//
//	projection  mat4x4  view → clip
//	view        mat4x4  scene → view
//	model       mat4x4  node → scene
//	ambient     mat4x4  scene → 3-D texture coordinates
//	color       vec4    single color or outline color
const variantWGSL = `// drawing shader variant: {{.Name}}
struct Uniforms {
    projection: mat4x4<f32>,
    view: mat4x4<f32>,
    model: mat4x4<f32>,
    ambient: mat4x4<f32>,
    color: vec4<f32>,
};

@group(0) @binding(0) var<uniform> u: Uniforms;
{{- if .Texture2D}}
@group(1) @binding(0) var color_tex: texture_2d<f32>;
@group(1) @binding(1) var color_sampler: sampler;
{{- end}}
{{- if .Ambient3D}}
@group(1) @binding(2) var ambient_tex: texture_3d<f32>;
@group(1) @binding(3) var ambient_sampler: sampler;
{{- end}}

struct VertexInput {
    @location(0) position: vec3<f32>,
{{- if .Lighting}}
    @location(1) normal: vec3<f32>,
{{- end}}
{{- if .VertexColors}}
    @location(2) color: vec4<f32>,
{{- end}}
{{- if .Texture2D}}
    @location(3) uv: vec2<f32>,
{{- end}}
{{- if .ShiftAndScale}}
    @location(4) shift_scale: vec4<f32>,
{{- end}}
{{- if .Instancing}}
    @location(5) inst0: vec4<f32>,
    @location(6) inst1: vec4<f32>,
    @location(7) inst2: vec4<f32>,
    @location(8) inst3: vec4<f32>,
{{- end}}
};

struct VertexOutput {
    @builtin(position) clip: vec4<f32>,
    @location(0) color: vec4<f32>,
{{- if .Lighting}}
    @location(1) normal: vec3<f32>,
{{- end}}
{{- if .Texture2D}}
    @location(2) uv: vec2<f32>,
{{- end}}
{{- if .Ambient3D}}
    @location(3) tex3d: vec3<f32>,
{{- end}}
};

@vertex
fn vs_main(in: VertexInput) -> VertexOutput {
    var out: VertexOutput;
    var p = vec4<f32>(in.position, 1.0);
{{- if .Lighting}}
    var n = vec4<f32>(in.normal, 0.0);
{{- end}}
{{- if .ShiftAndScale}}
    p = vec4<f32>(in.position * in.shift_scale.w + in.shift_scale.xyz, 1.0);
{{- end}}
{{- if .Instancing}}
    let inst = mat4x4<f32>(in.inst0, in.inst1, in.inst2, in.inst3);
    p = inst * p;
{{- if .Lighting}}
    n = inst * n;
{{- end}}
{{- end}}
    let world = u.model * p;
    out.clip = u.projection * (u.view * world);
{{- if .VertexColors}}
    out.color = in.color;
{{- else}}
    out.color = u.color;
{{- end}}
{{- if .Lighting}}
    out.normal = (u.view * (u.model * n)).xyz;
{{- end}}
{{- if .Texture2D}}
    out.uv = in.uv;
{{- end}}
{{- if .Ambient3D}}
    out.tex3d = (u.ambient * world).xyz;
{{- end}}
    return out;
}

@fragment
fn fs_main(in: VertexOutput) -> @location(0) vec4<f32> {
{{- if .DepthOnly}}
    return vec4<f32>(0.0, 0.0, 0.0, 0.0);
{{- else if .Selection}}
    return u.color;
{{- else}}
    var c = in.color;
{{- if .Texture2D}}
    c = c * textureSample(color_tex, color_sampler, in.uv);
{{- end}}
{{- if .Lighting}}
    let key = normalize(vec3<f32>(1.0, -1.0, 1.0));
    let diffuse = max(dot(normalize(in.normal), key), 0.0);
    c = vec4<f32>(c.rgb * (0.3 + 0.7 * diffuse), c.a);
{{- end}}
{{- if .Ambient3D}}
    let occlusion = textureSample(ambient_tex, ambient_sampler, in.tex3d).r;
    c = vec4<f32>(c.rgb * occlusion, c.a);
{{- end}}
    return vec4<f32>(c.rgb * c.a, c.a);
{{- end}}
}
`

var variantTemplate = template.Must(template.New("variant").Parse(variantWGSL))

type variantData struct {
	Name          string
	Lighting      bool
	VertexColors  bool
	Texture2D     bool
	Ambient3D     bool
	ShiftAndScale bool
	Instancing    bool
	Selection     bool
	DepthOnly     bool
}

// ShaderSource renders the WGSL source of the variant selected by caps.
func ShaderSource(caps Capability) string {
	data := variantData{
		Name:          caps.String(),
		Lighting:      caps.Has(CapLighting),
		VertexColors:  caps.Has(CapVertexColors),
		Texture2D:     caps.Has(CapTexture2D),
		Ambient3D:     caps.Has(CapAmbientTexture3D),
		ShiftAndScale: caps.Has(CapShiftAndScale),
		Instancing:    caps.Has(CapInstancing) && !caps.Has(CapShiftAndScale),
		Selection:     caps.Has(CapSelection),
		DepthOnly:     caps.Has(CapDepthOnly),
	}
	var sb strings.Builder
	// The template is fixed and the data is plain booleans; execution cannot fail.
	_ = variantTemplate.Execute(&sb, data)
	return sb.String()
}
