package prompt

import "path"

// Root of the template tree inside a project.
const (
	ConfigRoot  = "_system/config"
	DefaultDir  = ConfigRoot + "/default"
	CustomDir   = ConfigRoot + "/custom"
	templateVer = "_v1.md"
)

// TemplateName returns the file name of an action or monitor template.
func TemplateName(actionType string, monitor bool) string {
	if monitor {
		return actionType + "_monitor" + templateVer
	}
	return actionType + templateVer
}

// DefaultPath returns the default-tier path of a template file.
func DefaultPath(name string) string {
	return path.Join(DefaultDir, name)
}

// CustomPath returns the scheme-specific path of a template file.
func CustomPath(scheme, name string) string {
	return path.Join(CustomDir, scheme, name)
}
