package widget

import (
	"bytes"
	"text/template"
)

func renderConfig(in map[string]any, ctx Ctx) map[string]any {
	if in == nil {
		return map[string]any{}
	}
	out := map[string]any{}
	for k, v := range in {
		s, ok := v.(string)
		if !ok {
			out[k] = v
			continue
		}
		tpl, err := template.New("cfg").Parse(s)
		if err != nil {
			out[k] = v
			continue
		}
		var buf bytes.Buffer
		_ = tpl.Execute(&buf, map[string]any{
			"Name":     ctx.Name,
			"Type":     ctx.Type,
			"Table":    ctx.Table,
			"RefTable": ctx.RefTable,
		})
		out[k] = buf.String()
	}
	return out
}
