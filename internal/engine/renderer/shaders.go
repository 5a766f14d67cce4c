package renderer

// Mesh shader. Mode 0 uses the vertex color, mode 1 is red and mode 2 is green.
const meshVertexShader = `
#version 410 core

layout (location = 0) in vec3 aPos;
layout (location = 1) in vec4 aColor;

uniform mat4 uWorld;
uniform mat4 uView;
uniform mat4 uProj;

out vec4 vColor;

void main() {
	gl_Position = uProj * uView * uWorld * vec4(aPos, 1.0);
	vColor = aColor;
}
`

const meshFragmentShader = `
#version 410 core

in vec4 vColor;
uniform int uMode;

out vec4 FragColor;

void main() {
	if (uMode == 2) {
		FragColor = vec4(0.0, 1.0, 0.0, 1.0);
	} else if (uMode == 1) {
		FragColor = vec4(1.0, 0.0, 0.0, 1.0);
	} else {
		FragColor = vColor;
	}
}
`

// Line shader for the grid and selection box.
const lineVertexShader = `
#version 410 core

layout (location = 0) in vec3 aPos;
layout (location = 1) in vec3 aColor;

uniform mat4 uView;
uniform mat4 uProj;

out vec3 vColor;

void main() {
	gl_Position = uProj * uView * vec4(aPos, 1.0);
	vColor = aColor;
}
`

const lineFragmentShader = `
#version 410 core

in vec3 vColor;
out vec4 FragColor;

void main() {
	FragColor = vec4(vColor, 1.0);
}
`
