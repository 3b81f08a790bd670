package dispatch

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"dispatchgen/internal/diag"
	"dispatchgen/internal/registry"
)

// Family is an API family named by a feature's api attribute.
type Family string

const (
	FamilyGL    Family = "gl"
	FamilyGLES1 Family = "gles1"
	FamilyGLES2 Family = "gles2"
	FamilyGLX   Family = "glx"
	FamilyEGL   Family = "egl"
	FamilyWGL   Family = "wgl"
)

// ParseVersion turns "X.Y" into X*10+Y. Only single-digit components are
// meaningful to the runtime version checks.
func ParseVersion(number string) (int, error) {
	majorText, minorText, ok := strings.Cut(strings.TrimSpace(number), ".")
	if !ok || len(majorText) != 1 || minorText == "" {
		return 0, diag.Errorf(diag.RegBadVersion, number, "expected a X.Y version number")
	}
	major, err := strconv.Atoi(majorText)
	if err != nil {
		return 0, diag.Errorf(diag.RegBadVersion, number, "bad major version: %v", err)
	}
	minor, err := strconv.Atoi(minorText[:1])
	if err != nil {
		return 0, diag.Errorf(diag.RegBadVersion, number, "bad minor version: %v", err)
	}
	return major*10 + minor, nil
}

// FeatureProvider applies the fixed per-family rule for one feature block.
func FeatureProvider(api, number string) (*Provider, error) {
	version, err := ParseVersion(number)
	if err != nil {
		return nil, err
	}
	switch Family(api) {
	case FamilyGL:
		label := "Desktop OpenGL " + number
		// GL <= 1.2 is exported as plain symbols by the Linux libGL ABI;
		// anything newer has to go through GetProcAddress.
		if version <= 12 {
			return NewProvider(label, "epoxy_is_desktop_gl()", "epoxy_gl_dlsym({name})"), nil
		}
		cond := fmt.Sprintf("epoxy_is_desktop_gl() && epoxy_conservative_gl_version() >= %d", version)
		return NewProvider(label, cond, "epoxy_get_proc_address({name})"), nil
	case FamilyGLES2:
		label := "OpenGL ES " + number
		cond := fmt.Sprintf("!epoxy_is_desktop_gl() && epoxy_gl_version() >= %d", version)
		if version <= 20 {
			return NewProvider(label, cond, "epoxy_gles2_dlsym({name})"), nil
		}
		return NewProvider(label, cond, "epoxy_get_proc_address({name})"), nil
	case FamilyGLES1:
		return NewProvider("OpenGL ES 1.0", "!epoxy_is_desktop_gl() && epoxy_gl_version() == 10", "epoxy_gles1_dlsym({name})"), nil
	case FamilyGLX:
		label := fmt.Sprintf("GLX %d", version)
		// dlsym is cheaper than glXGetProcAddress for everything the
		// library exports directly.
		if version > 13 {
			cond := fmt.Sprintf("epoxy_conservative_glx_version() >= %d", version)
			return NewProvider(label, cond, "glXGetProcAddress((const GLubyte *){name})"), nil
		}
		return NewProvider(label, "true", "epoxy_glx_dlsym({name})"), nil
	case FamilyEGL:
		label := fmt.Sprintf("EGL %d", version)
		if version > 10 {
			cond := fmt.Sprintf("epoxy_conservative_egl_version() >= %d", version)
			return NewProvider(label, cond, "eglGetProcAddress({name})"), nil
		}
		return NewProvider(label, "true", "epoxy_egl_dlsym({name})"), nil
	case FamilyWGL:
		return NewProvider(fmt.Sprintf("WGL %d", version), "true", "epoxy_gl_dlsym({name})"), nil
	}
	return nil, diag.Errorf(diag.PrvUnknownAPI, api, "feature %s uses an unknown API family", number)
}

// ExtensionProviders derives one provider per protocol the extension's
// supported list names. GL, GL core and both GLES flavours share the GL
// extension-string check; unknown entries such as "disabled" contribute
// nothing.
func ExtensionProviders(name string, supported []string) []*Provider {
	has := make(map[string]bool, len(supported))
	for _, s := range supported {
		has[strings.TrimSpace(s)] = true
	}
	var out []*Provider
	if has["glx"] {
		out = append(out, NewProvider(
			fmt.Sprintf("GLX extension %q", name),
			fmt.Sprintf("epoxy_conservative_has_glx_extension(%q)", name),
			"glXGetProcAddress((const GLubyte *){name})"))
	}
	if has["egl"] {
		out = append(out, NewProvider(
			fmt.Sprintf("EGL extension %q", name),
			fmt.Sprintf("epoxy_conservative_has_egl_extension(%q)", name),
			"eglGetProcAddress({name})"))
	}
	if has["wgl"] {
		out = append(out, NewProvider(
			fmt.Sprintf("WGL extension %q", name),
			fmt.Sprintf("epoxy_conservative_has_wgl_extension(%q)", name),
			"wglGetProcAddress((LPCSTR){name})"))
	}
	// glcore counts too: core-profile-only extensions are still reported in
	// the GL extension string, and dropping them would leave their commands
	// without a provider.
	if has["gl"] || has["glcore"] || has["gles1"] || has["gles2"] {
		out = append(out, NewProvider(
			fmt.Sprintf("GL extension %q", name),
			fmt.Sprintf("epoxy_conservative_has_gl_extension(%q)", name),
			"epoxy_get_proc_address({name})"))
	}
	return out
}

// orderedFeatures sorts features by version, keeping document order among
// equal versions.
func orderedFeatures(feats []registry.Feature) ([]registry.Feature, error) {
	type keyed struct {
		feat    registry.Feature
		version int
	}
	ks := make([]keyed, 0, len(feats))
	for _, f := range feats {
		v, err := ParseVersion(f.Number)
		if err != nil {
			return nil, err
		}
		ks = append(ks, keyed{feat: f, version: v})
	}
	sort.SliceStable(ks, func(i, j int) bool { return ks[i].version < ks[j].version })
	out := make([]registry.Feature, len(ks))
	for i, k := range ks {
		out[i] = k.feat
	}
	return out, nil
}

func (t *Target) require(owner string, commands []string, p *Provider) error {
	for _, name := range commands {
		f, ok := t.funcs[name]
		if !ok {
			return diag.Errorf(diag.RegUnknownCommand, name, "required by %s but never defined", owner)
		}
		if err := f.providers.add(p); err != nil {
			return fmt.Errorf("%s: %w", name, err)
		}
	}
	return nil
}

// synthesize attaches providers from every feature, then every extension.
func (t *Target) synthesize(reg *registry.Registry) error {
	feats, err := orderedFeatures(reg.Features)
	if err != nil {
		return err
	}
	for _, feat := range feats {
		p, err := FeatureProvider(feat.API, feat.Number)
		if err != nil {
			return err
		}
		if err := t.require(p.Label, feat.Commands, p); err != nil {
			return err
		}
	}
	for _, ext := range reg.Extensions {
		for _, p := range ExtensionProviders(ext.Name, ext.Supported) {
			if err := t.require(p.Label, ext.Commands, p); err != nil {
				return err
			}
		}
	}
	return nil
}

// applyBootstrap replaces the providers of each listed function that exists.
func (t *Target) applyBootstrap(boots []Bootstrap) error {
	for _, b := range boots {
		if err := b.Loader.validate(b.Name); err != nil {
			return err
		}
		f, ok := t.funcs[b.Name]
		if !ok {
			continue
		}
		f.providers.reset()
		if err := f.providers.add(NewProvider(BootstrapLabel, "true", b.Loader)); err != nil {
			return err
		}
	}
	return nil
}
