package dispatch

// BootstrapLabel is the label of every bootstrap override provider.
const BootstrapLabel = "always present"

// Bootstrap pins a function to a single unconditional provider.
type Bootstrap struct {
	Name   string
	Loader Loader
}

// Options tune Build. The zero value applies no exclusion, no bootstrap
// overrides and no wrapped functions; use DefaultOptions for the stock set.
type Options struct {
	Exclude   ExcludeFunc
	Bootstrap []Bootstrap
	Wrapped   []string
}

// DefaultParamTypeExclusions are the parameter types no platform defines.
var DefaultParamTypeExclusions = []string{"VLServer", "DMparams"}

// DefaultBootstrap lists the functions the generated resolver calls while
// deciding how to resolve everything else. glXGetProcAddress is required as
// a public symbol by the Linux OpenGL ABI even though the registry models it
// as an extension.
var DefaultBootstrap = []Bootstrap{
	{Name: "glGetString", Loader: "epoxy_get_proc_address({name})"},
	{Name: "glGetIntegerv", Loader: "epoxy_get_proc_address({name})"},
	{Name: "glXGetProcAddress", Loader: "epoxy_glx_dlsym({name})"},
}

// DefaultWrapped have hand-written wrappers in the support library.
var DefaultWrapped = []string{"glBegin", "glEnd"}

// DefaultOptions returns the stock generator configuration.
func DefaultOptions() Options {
	boot := make([]Bootstrap, len(DefaultBootstrap))
	copy(boot, DefaultBootstrap)
	wrapped := make([]string, len(DefaultWrapped))
	copy(wrapped, DefaultWrapped)
	return Options{
		Exclude:   ExcludeParamTypes(DefaultParamTypeExclusions...),
		Bootstrap: boot,
		Wrapped:   wrapped,
	}
}
