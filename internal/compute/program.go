package compute

// Program is a per-pixel transform from named inputs to one output pixel. Run
// is the host rendition used by the software device; GLSL is the compute
// shader source used by the OpenGL device. Both must agree.
type Program struct {
	Name string
	Run  func(in *Inputs, x, y int, out []float32)
	GLSL string
}

// Sampler reads one bound input texture.
type Sampler struct {
	Width, Height, Channels int
	data                    []float32
}

// Fetch returns the channels of pixel (x, y).
func (s *Sampler) Fetch(x, y int) []float32 {
	i := (y*s.Width + x) * s.Channels
	return s.data[i : i+s.Channels]
}

// At treats the texture as a flat array of scalars and returns element k.
func (s *Sampler) At(k int) float32 {
	return s.data[k]
}

// Inputs is what a program invocation sees: uniforms and bound samplers.
type Inputs struct {
	uniforms map[string]Uniform
	samplers map[string]*Sampler
}

func (in *Inputs) Float(name string) float32 {
	return float32(in.uniforms[name].Value)
}

func (in *Inputs) Int(name string) int {
	return int(in.uniforms[name].Value)
}

func (in *Inputs) Texture(name string) *Sampler {
	return in.samplers[name]
}
