package config

import (
	"errors"
	"fmt"
	"io"
	"os"
	"regexp"
	"slices"
	"strings"

	"github.com/0xPolygon/xrelay/log"
	"github.com/knadh/koanf/parsers/json"
	"github.com/knadh/koanf/parsers/toml"
	"github.com/knadh/koanf/providers/rawbytes"
	"github.com/knadh/koanf/v2"
	"github.com/valyala/fasttemplate"
)

const (
	startTag = "{{"
	endTag   = "}}"
)

var (
	ErrCycleVars                 = errors.New("cycle vars")
	ErrMissingVars               = errors.New("missing vars")
	ErrUnsupportedConfigFileType = errors.New("unsupported config file type")

	// A={{B}} is not valid TOML, vars are quoted and typed before parsing: A="{{B:int}}"
	unquotedVarRe = regexp.MustCompile(`=\s*\{\{([^}:]+)\}\}`)
	quotedVarRe   = regexp.MustCompile(`=\s*\"\{\{([^}:]+:int)\}\}\"`)
	typedVarRe    = regexp.MustCompile(`\{\{([^}:]+:int)\}\}`)
)

// FileData is a config file already read
type FileData struct {
	Name    string
	Content string
}

// ConfigRender merges TOML files, later files override earlier ones, and resolves the
// {{Var}} references. A var is looked up first in the environment, as <EnvPrefix>_<Var>
// with dots replaced by underscores, and then in the merged config.
type ConfigRender struct {
	FilesData     []FileData
	LookupEnvFunc func(key string) (string, bool)
	EnvPrefix     string
}

func NewConfigRender(filesData []FileData, envPrefix string) *ConfigRender {
	return &ConfigRender{
		FilesData:     filesData,
		LookupEnvFunc: os.LookupEnv,
		EnvPrefix:     envPrefix,
	}
}

// Render merges the files and resolves the vars
func (c *ConfigRender) Render() (string, error) {
	merged, err := c.Merge()
	if err != nil {
		return "", fmt.Errorf("fail to merge files. Err: %w", err)
	}
	return c.ResolveVars(merged)
}

// Merge merges the files without resolving the vars
func (c *ConfigRender) Merge() (string, error) {
	k := koanf.New(".")
	for _, data := range c.FilesData {
		content := quoteVars(data.Content)
		if err := k.Load(rawbytes.Provider([]byte(content)), toml.Parser()); err != nil {
			log.Errorf("error loading file %s. Err:%v. FileData: %v", data.Name, err, content)
			return "", fmt.Errorf("fail to load converted template %s to toml. Err: %w", data.Name, err)
		}
	}
	marshaled, err := k.Marshal(toml.Parser())
	if err != nil {
		return "", fmt.Errorf("fail to marshal to toml. Err: %w", err)
	}
	return unquoteVars(string(marshaled)), nil
}

// ResolveVars replaces the vars of a merged config
func (c *ConfigRender) ResolveVars(fullConfigData string) (string, error) {
	tpl, values, err := c.readTemplateAndValues(fullConfigData)
	if err != nil {
		return "", err
	}
	// vars pointing to other vars keep the {{tag}} form after this pass
	rendered := removeTypeMarks(c.executeTemplate(tpl, values))
	if missing := c.missingVars(tpl, values); len(missing) > 0 {
		return rendered, fmt.Errorf("missing vars: %v. Err: %w", missing, ErrMissingVars)
	}
	resolved, err := c.resolveIndirections(rendered)
	if err != nil {
		return fullConfigData, err
	}
	return resolved, nil
}

// resolveIndirections runs passes until no var is left. A pass that doesn't reduce the number
// of vars means they reference each other: A={{B}} B={{A}}
func (c *ConfigRender) resolveIndirections(partiallyResolved string) (string, error) {
	data := unquoteVars(partiallyResolved)
	pending := varsIn(data)
	if len(pending) == 0 {
		return partiallyResolved, nil
	}
	log.Debugf("resolving indirect vars: %v", pending)
	for len(pending) > 0 {
		tpl, values, err := c.readTemplateAndValues(data)
		if err != nil {
			return "", fmt.Errorf("fails to read template resolving vars. Err: %w", err)
		}
		data = removeTypeMarks(unquoteVars(c.executeTemplate(tpl, values)))
		previous := pending
		pending = varsIn(data)
		if len(pending) == len(previous) {
			return partiallyResolved, fmt.Errorf("not resolved cycle vars: %v. Err: %w", pending, ErrCycleVars)
		}
	}
	return data, nil
}

func (c *ConfigRender) readTemplateAndValues(data string) (*fasttemplate.Template, map[string]interface{}, error) {
	tpl, err := fasttemplate.NewTemplate(data, startTag, endTag)
	if err != nil {
		return nil, nil, fmt.Errorf("fail to load template. Err: %w", err)
	}
	quoted := quoteVars(data)
	k := koanf.New(".")
	if err := k.Load(rawbytes.Provider([]byte(quoted)), toml.Parser()); err != nil {
		return nil, nil, fmt.Errorf("error parsing config. Content: %s. Err: %w", quoted, err)
	}
	return tpl, k.All(), nil
}

func (c *ConfigRender) executeTemplate(tpl *fasttemplate.Template, values map[string]interface{}) string {
	return tpl.ExecuteFuncString(func(w io.Writer, tag string) (int, error) {
		if v, ok := c.lookupEnv(tag); ok {
			return w.Write([]byte(v))
		}
		if v, ok := values[tag]; ok {
			return w.Write([]byte(fmt.Sprintf("%v", v)))
		}
		return w.Write([]byte(startTag + tag + endTag))
	})
}

// missingVars returns the vars defined neither in the environment nor in values
func (c *ConfigRender) missingVars(tpl *fasttemplate.Template, values map[string]interface{}) []string {
	var missing []string
	tpl.ExecuteFuncString(func(w io.Writer, tag string) (int, error) {
		if _, ok := c.lookupEnv(tag); ok {
			return 0, nil
		}
		if _, ok := values[tag]; !ok && !slices.Contains(missing, tag) {
			missing = append(missing, tag)
		}
		return 0, nil
	})
	return missing
}

func (c *ConfigRender) lookupEnv(tag string) (string, bool) {
	return c.LookupEnvFunc(c.EnvPrefix + "_" + strings.ReplaceAll(tag, ".", "_"))
}

func varsIn(data string) []string {
	tpl, err := fasttemplate.NewTemplate(data, startTag, endTag)
	if err != nil {
		return nil
	}
	var vars []string
	tpl.ExecuteFuncString(func(w io.Writer, tag string) (int, error) {
		vars = append(vars, tag)
		return 0, nil
	})
	return vars
}

func quoteVars(data string) string {
	return unquotedVarRe.ReplaceAllString(data, `= "{{${1}:int}}"`)
}

func unquoteVars(data string) string {
	return quotedVarRe.ReplaceAllStringFunc(data, func(match string) string {
		submatch := quotedVarRe.FindStringSubmatch(match)
		return "= {{" + strings.Split(submatch[1], ":")[0] + "}}"
	})
}

func removeTypeMarks(data string) string {
	return typedVarRe.ReplaceAllStringFunc(data, func(match string) string {
		submatch := typedVarRe.FindStringSubmatch(match)
		return startTag + strings.Split(submatch[1], ":")[0] + endTag
	})
}

func convertFileToToml(fileData string, fileType string) (string, error) {
	switch strings.ToLower(fileType) {
	case "json":
		k := koanf.New(".")
		if err := k.Load(rawbytes.Provider([]byte(fileData)), json.Parser()); err != nil {
			return fileData, fmt.Errorf("error loading json file. Err: %w", err)
		}
		tomlData, err := toml.Parser().Marshal(k.Raw())
		if err != nil {
			return fileData, fmt.Errorf("error converting json to toml. Err: %w", err)
		}
		return string(tomlData), nil
	case "yml", "yaml", "ini":
		return fileData, fmt.Errorf("cant convert from %s to TOML. Err: %w", fileType, ErrUnsupportedConfigFileType)
	default:
		log.Warnf("filetype %s unknown, assuming is a TOML file", fileType)
		return fileData, nil
	}
}
