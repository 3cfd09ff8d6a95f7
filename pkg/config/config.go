package config

// ProjectConfigFile is the per-project configuration file name
const ProjectConfigFile = ".specinit.toml"

// Config is the fully merged specinit configuration
type Config struct {
	Project  Project                `koanf:"project"`
	Defaults Answers                `koanf:"defaults"`
	Answers  Answers                `koanf:"answers"`
	Tokens   map[string]TokenConfig `koanf:"tokens"`
	Legacy   Legacy                 `koanf:"legacy"`
	Scan     Scan                   `koanf:"scan"`
	Cleanup  Cleanup                `koanf:"cleanup"`
}

// Project holds project root detection settings
type Project struct {
	Marker string `koanf:"marker"`
}

// Answers are the user-facing values that placeholder tokens resolve to
type Answers struct {
	ProjectName string `koanf:"project_name" yaml:"project_name" json:"project_name"`
	PackageName string `koanf:"package_name" yaml:"package_name" json:"package_name"`
	GithubOrg   string `koanf:"github_org" yaml:"github_org" json:"github_org"`
	AuthorName  string `koanf:"author_name" yaml:"author_name" json:"author_name"`
	AuthorEmail string `koanf:"author_email" yaml:"author_email" json:"author_email"`
	Year        string `koanf:"year" yaml:"year" json:"year"`
}

// Merge returns a copy of a where every blank field is taken from fallback
func (a Answers) Merge(fallback Answers) Answers {
	pick := func(v, f string) string {
		if v != "" {
			return v
		}
		return f
	}
	return Answers{
		ProjectName: pick(a.ProjectName, fallback.ProjectName),
		PackageName: pick(a.PackageName, fallback.PackageName),
		GithubOrg:   pick(a.GithubOrg, fallback.GithubOrg),
		AuthorName:  pick(a.AuthorName, fallback.AuthorName),
		AuthorEmail: pick(a.AuthorEmail, fallback.AuthorEmail),
		Year:        pick(a.Year, fallback.Year),
	}
}

// TokenConfig declares one placeholder token and the template its value is
// rendered from
type TokenConfig struct {
	Token string `koanf:"token"`
	Value string `koanf:"value"`
	Order int    `koanf:"order"`
}

// Legacy holds literal tokens for checkouts cloned instead of instantiated
type Legacy struct {
	Enabled bool                   `koanf:"enabled"`
	Tokens  map[string]TokenConfig `koanf:"tokens"`
}

// Scan controls which files form the target set
type Scan struct {
	SkipDirs    []string `koanf:"skip_dirs"`
	Include     []string `koanf:"include"`
	Exclude     []string `koanf:"exclude"`
	MaxFileSize int64    `koanf:"max_file_size"`
}

// Cleanup lists what the initializer removes after a successful run
type Cleanup struct {
	Paths            []string `koanf:"paths"`
	RemoveExecutable bool     `koanf:"remove_executable"`
}
