package mail

import (
	"fmt"
	"strings"
	"text/template"

	"github.com/meta-portal/meta-service/internal/model"
)

// render substitutes variables into a stored template's subject, text and
// HTML bodies. Declared variables absent from vars render as empty strings,
// never as an error; that is the template contract callers rely on.
func render(tpl *model.EmailTemplate, vars map[string]any) (subject, html, text string, err error) {
	data := make(map[string]string, len(vars)+len(tpl.Variables))
	for k, v := range vars {
		if v == nil {
			data[k] = ""
			continue
		}
		data[k] = fmt.Sprint(v)
	}
	for _, name := range tpl.Variables {
		if _, ok := data[name]; !ok {
			data[name] = ""
		}
	}

	subject, err = renderOne("subject", tpl.SubjectTemplate, data)
	if err != nil {
		return "", "", "", fmt.Errorf("rendering template %q subject: %w", tpl.Name, err)
	}
	text, err = renderOne("text", tpl.TextContent, data)
	if err != nil {
		return "", "", "", fmt.Errorf("rendering template %q body: %w", tpl.Name, err)
	}
	if tpl.HTMLContent != "" {
		html, err = renderOne("html", tpl.HTMLContent, data)
		if err != nil {
			return "", "", "", fmt.Errorf("rendering template %q html: %w", tpl.Name, err)
		}
	}
	return subject, html, text, nil
}

func renderOne(name, src string, data map[string]string) (string, error) {
	t, err := template.New(name).Option("missingkey=zero").Parse(src)
	if err != nil {
		return "", err
	}
	var b strings.Builder
	if err := t.Execute(&b, data); err != nil {
		return "", err
	}
	return b.String(), nil
}
