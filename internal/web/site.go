// Package web serves the public HTML pages: home, post and not-found.
package web

import (
	"fmt"
	"regexp"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/octavio/octavio/internal/models"
	pkgconfig "github.com/octavio/octavio/pkg/config"
)

// Site is the copy and settings of the site, loaded from site.yaml.
type Site struct {
	Name        string   `yaml:"name"`
	Title       string   `yaml:"title"`
	Description string   `yaml:"description"`
	Keywords    []string `yaml:"keywords"`
	Hero        Hero     `yaml:"hero"`
	Blog        Section  `yaml:"blog"`
	About       About    `yaml:"about"`
	Projects    Projects `yaml:"projects"`
	Contact     Contact  `yaml:"contact"`
	Stats       Stats    `yaml:"stats"`
}

// Hero is the landing banner.
type Hero struct {
	Tagline string `yaml:"tagline"`
	Intro   string `yaml:"intro"`
}

// Section is a heading with an introductory line.
type Section struct {
	Heading string `yaml:"heading"`
	Intro   string `yaml:"intro"`
}

// About is the persona section. Body is standard Markdown.
type About struct {
	Heading string   `yaml:"heading"`
	Body    string   `yaml:"body"`
	Skills  []string `yaml:"skills"`
}

// Projects lists showcase projects.
type Projects struct {
	Section `yaml:",inline"`
	Items   []Project `yaml:"items"`
}

// Project is one showcase card.
type Project struct {
	Title       string   `yaml:"title"`
	Description string   `yaml:"description"`
	Tags        []string `yaml:"tags"`
	Link        string   `yaml:"link"`
	Status      string   `yaml:"status"`
}

// Contact lists contact methods. The message form never submits.
type Contact struct {
	Section `yaml:",inline"`
	Methods []ContactMethod `yaml:"methods"`
}

// ContactMethod is one contact card.
type ContactMethod struct {
	Name        string `yaml:"name"`
	Handle      string `yaml:"handle"`
	Icon        string `yaml:"icon"`
	Description string `yaml:"description"`
	URL         string `yaml:"url"`
}

// Stats feeds the system stats strip. DaysActive is derived from StartDate.
type Stats struct {
	StartDate string `yaml:"start_date"`
	Cores     int    `yaml:"cores"`
	MemoryGB  int    `yaml:"memory_gb"`
	Model     string `yaml:"model"`
}

var statusRe = regexp.MustCompile(`^(Active|Beta|In Development|Planning)$`)

// Validate implements validation.Validatable.
func (s *Site) Validate() error {
	return validation.ValidateStruct(s,
		validation.Field(&s.Name, validation.Required),
		validation.Field(&s.Title, validation.Required),
		validation.Field(&s.Stats),
		validation.Field(&s.Projects),
	)
}

// Validate implements validation.Validatable.
func (s Stats) Validate() error {
	return validation.ValidateStruct(&s,
		validation.Field(&s.StartDate, validation.Required, validation.Date(models.DateLayout)),
		validation.Field(&s.Cores, validation.Min(0)),
		validation.Field(&s.MemoryGB, validation.Min(0)),
	)
}

// Validate implements validation.Validatable.
func (p Projects) Validate() error {
	return validation.ValidateStruct(&p,
		validation.Field(&p.Items, validation.Each(validation.By(func(v any) error {
			proj, _ := v.(Project)
			return validation.ValidateStruct(&proj,
				validation.Field(&proj.Title, validation.Required),
				validation.Field(&proj.Status, validation.Match(statusRe)),
			)
		}))),
	)
}

// DaysActive returns whole days elapsed since StartDate, never negative.
func (s Stats) DaysActive(now time.Time) int {
	start, err := time.Parse(models.DateLayout, s.StartDate)
	if err != nil {
		return 0
	}
	days := int(now.Sub(start).Hours() / 24)
	if days < 0 {
		return 0
	}
	return days
}

// LoadSite reads and validates a site.yaml file. Environment variables in the
// file are expanded.
func LoadSite(path string) (*Site, error) {
	var s Site
	if err := pkgconfig.Load(path, &s); err != nil {
		return nil, fmt.Errorf("web: load site: %w", err)
	}
	return &s, nil
}
