package file

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"github.com/custodia-labs/reqsync/internal/core/domain"
)

const templateKey = "template.path"

// TemplateLoader reads record template schemas from YAML files.
//
//	identity_field: Test Case ID
//	title_field: Test Case Title
//	trace_field: Requirement ID
//	identity_format: TC-%03d
//	delimiter: ---TEST_CASE---
//	fields:
//	  - name: Test Case ID
//	  - name: Priority
//	    default: Medium
type TemplateLoader struct {
	validate *validator.Validate
}

// NewTemplateLoader creates a template loader.
func NewTemplateLoader() *TemplateLoader {
	return &TemplateLoader{validate: validator.New(validator.WithRequiredStructEnabled())}
}

// Load reads the template at path. An empty path returns the default template.
// Schema problems are reported as *domain.ConfigurationError.
func (l *TemplateLoader) Load(path string) (domain.RecordTemplate, error) {
	if path == "" {
		return domain.DefaultRecordTemplate(), nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return domain.RecordTemplate{}, fmt.Errorf("read template: %w", err)
	}

	var tmpl domain.RecordTemplate
	if err := yaml.Unmarshal(data, &tmpl); err != nil {
		return domain.RecordTemplate{}, &domain.ConfigurationError{
			Key: templateKey, Reason: fmt.Sprintf("parse %s: %v", path, err), Err: domain.ErrInvalidInput,
		}
	}
	if tmpl.IdentityFormat == "" {
		tmpl.IdentityFormat = domain.DefaultIdentityFormat
	}
	if tmpl.Delimiter == "" {
		tmpl.Delimiter = domain.DefaultDelimiter
	}

	if err := l.check(tmpl); err != nil {
		return domain.RecordTemplate{}, err
	}
	return tmpl, nil
}

// check validates struct tags, then that the role fields name declared fields.
func (l *TemplateLoader) check(tmpl domain.RecordTemplate) error {
	if err := l.validate.Struct(tmpl); err != nil {
		return &domain.ConfigurationError{Key: templateKey, Reason: err.Error(), Err: domain.ErrInvalidInput}
	}

	seen := make(map[string]bool, len(tmpl.Fields))
	for _, f := range tmpl.Fields {
		if seen[f.Name] {
			return &domain.ConfigurationError{
				Key: templateKey, Reason: fmt.Sprintf("duplicate field %q", f.Name), Err: domain.ErrInvalidInput,
			}
		}
		seen[f.Name] = true
	}

	roles := map[string]string{"identity_field": tmpl.IdentityField, "title_field": tmpl.TitleField}
	if tmpl.TraceField != "" {
		roles["trace_field"] = tmpl.TraceField
	}
	for role, name := range roles {
		if !seen[name] {
			return &domain.ConfigurationError{
				Key: templateKey, Reason: fmt.Sprintf("%s %q is not a declared field", role, name), Err: domain.ErrInvalidInput,
			}
		}
	}

	if _, ok := tmpl.ParseID(tmpl.FormatID(1)); !ok {
		return &domain.ConfigurationError{
			Key: templateKey, Reason: fmt.Sprintf("identity_format %q does not round-trip", tmpl.IdentityFormat), Err: domain.ErrInvalidInput,
		}
	}
	return nil
}

// Save writes tmpl to path as YAML, creating parent directories.
func (l *TemplateLoader) Save(path string, tmpl domain.RecordTemplate) error {
	if err := l.check(tmpl); err != nil {
		return err
	}
	data, err := yaml.Marshal(tmpl)
	if err != nil {
		return fmt.Errorf("encode template: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return fmt.Errorf("create template directory: %w", err)
	}
	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("write template: %w", err)
	}
	return nil
}
