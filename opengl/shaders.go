//go:build !nogl

package opengl

// shaderSources maps shader names to their GLSL sources.
var shaderSources = map[string]string{
	"scene.vert": `#version 330 core

uniform vec2 vp[2];

layout(location = 0) in vec2 pos;
layout(location = 1) in vec4 color;

out vec4 vcolor;

void main() {
	gl_Position = vec4(2 * (pos - vp[0]) / (vp[1] - vp[0]) - 1, 0, 1);
	vcolor = color;
}
`,
	"scene.frag": `#version 330 core

in vec4 vcolor;

out vec4 fcolor;

void main() {
	fcolor = vcolor;
}
`,
}
