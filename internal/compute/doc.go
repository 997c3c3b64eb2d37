// Package compute runs layout kernels against device-resident textures.
//
// A [Device] owns texture memory and executes [Program]s. Two devices exist:
//
//   - Software: textures in host memory, programs run in Go across all cores
//   - OpenGL: compute shaders over RGBA32F textures (build with -tags opengl)
//
// Node state lives in [Texture]s laid out on a square grid, node i at pixel
// (i % side, i / side), with unused pixels parked at [Sentinel]. A [Kernel]
// binds one program to named numbers and textures and writes one output
// texture per [Kernel.Execute]:
//
//	k := compute.NewKernel(dev, compute.SpringProgram)
//	k.SetInputTexture(compute.InPositions, pos)
//	k.SetInputNumber(compute.UniNodeCount, float64(n), true)
//	k.SetOutputTexture(next)
//	err := k.Execute()
//
// A [Scope] groups textures so that one Release frees all of them.
package compute
