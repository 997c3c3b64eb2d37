//go:build !opengl

package compute

// OpenGL is unavailable in builds without the opengl tag.
type OpenGL struct{}

func NewOpenGL() *OpenGL {
	return &OpenGL{}
}

func (o *OpenGL) Name() string    { return "opengl (not available)" }
func (o *OpenGL) Available() bool { return false }
func (o *OpenGL) Cleanup()        {}

func (o *OpenGL) Alloc(width, height, channels int) (Handle, error) { return 0, ErrUnavailable }
func (o *OpenGL) Write(h Handle, data []float32) error              { return ErrUnavailable }
func (o *OpenGL) Read(h Handle, dst []float32) error                { return ErrUnavailable }
func (o *OpenGL) Free(h Handle) error                               { return ErrUnavailable }
func (o *OpenGL) Dispatch(p *Pass) error                            { return ErrUnavailable }
