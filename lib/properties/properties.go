package properties

import (
	"bytes"
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/olekukonko/tablewriter"
	"github.com/pkg/errors"
	"github.com/spf13/viper"

	"hive/hive"
)

var ErrPropertyNoSet = fmt.Errorf("property is required, but not set")

const GlobalKey = "global"

type properties struct {
	*viper.Viper
	runtime *viper.Viper
}

func (p *properties) Sub(key string) hive.Properties {
	sub := p.Viper.Sub(key)
	if sub == nil {
		return nil
	}
	return &properties{Viper: sub, runtime: p.runtime}
}

// PrefixKeys returns the direct child keys of prefix.
func (p *properties) PrefixKeys(prefix string) []string {
	all := p.Viper.GetStringMap(prefix)
	keys := make([]string, 0, len(all))
	for key := range all {
		keys = append(keys, key)
	}
	return keys
}

func (p *properties) Global() hive.Properties {
	return &properties{Viper: p.runtime, runtime: p.runtime}
}

func (p *properties) GetStringSlice(property hive.Property) []string {
	return p.Viper.GetStringSlice(property.Name())
}

func (p *properties) GetStringMapString(property hive.Property) map[string]string {
	return p.Viper.GetStringMapString(property.Name())
}

func (p *properties) GetString(property hive.Property) string {
	return p.Viper.GetString(property.Name())
}

func (p *properties) GetBool(property hive.Property) bool {
	return p.Viper.GetBool(property.Name())
}

func (p *properties) GetInt(property hive.Property) int {
	return p.Viper.GetInt(property.Name())
}

func (p *properties) GetInt64(property hive.Property) int64 {
	return p.Viper.GetInt64(property.Name())
}

func (p *properties) GetUint64(property hive.Property) uint64 {
	return p.Viper.GetUint64(property.Name())
}

func (p *properties) GetDuration(property hive.Property) time.Duration {
	return p.Viper.GetDuration(property.Name())
}

// InitAndRender checks required properties, applies defaults and renders the effective values.
func InitAndRender(p hive.Properties, def hive.PropertiesDef) (string, error) {
	_p, ok := p.(*properties)
	if !ok {
		return "", nil
	}
	buffer := &bytes.Buffer{}
	tWriter := tablewriter.NewWriter(buffer)
	tWriter.SetHeader([]string{"name", "type", "value"})
	tWriter.SetAutoFormatHeaders(false)
	tWriter.SetAutoWrapText(false)

	for _, _property := range def {
		if _property.Required() {
			if !_p.Viper.IsSet(_property.Name()) {
				return "", errors.WithMessage(ErrPropertyNoSet, _property.Name())
			}
		} else {
			_p.Viper.SetDefault(_property.Name(), _property.Default())
		}
		tWriter.Append([]string{
			_property.Name(),
			_property.Type(),
			fmt.Sprintf("%+v", _p.Viper.Get(_property.Name())),
		})
	}
	tWriter.Render()
	return buffer.String(), nil
}

func RenderDef(p hive.PropertiesDef) string {
	buffer := &bytes.Buffer{}
	tWriter := tablewriter.NewWriter(buffer)
	tWriter.SetHeader([]string{"name", "description", "required", "type", "default"})
	tWriter.SetAutoFormatHeaders(false)
	tWriter.SetAutoWrapText(false)
	for _, p := range p {
		tWriter.Append([]string{
			p.Name(),
			p.Description(),
			strconv.FormatBool(p.Required()),
			p.Type(),
			fmt.Sprintf("%+v", p.Default()),
		})
	}
	tWriter.Render()
	return buffer.String()
}

func fromViper(v *viper.Viper) hive.Properties {
	runtime := v.Sub(GlobalKey)
	if runtime == nil {
		runtime = viper.New()
	}
	return &properties{Viper: v, runtime: runtime}
}

// New reads the named config file from the given paths, it panics when the file can't be read.
func New(propertiesName string, propertiesType string, propertiesPath ...string) hive.Properties {
	v := viper.New()
	v.SetConfigName(propertiesName)
	v.SetConfigType(propertiesType)
	for _, p := range propertiesPath {
		v.AddConfigPath(p)
	}
	if err := v.ReadInConfig(); err != nil {
		panic(fmt.Sprintf("read config error:%s", err.Error()))
	}
	return fromViper(v)
}

// NewFromReader reads a config of the given type, e.g. yaml, from r.
func NewFromReader(propertiesType string, r io.Reader) (hive.Properties, error) {
	v := viper.New()
	v.SetConfigType(propertiesType)
	if err := v.ReadConfig(r); err != nil {
		return nil, errors.Wrap(err, "read config")
	}
	return fromViper(v), nil
}

// NewFromMap builds properties from an in-memory config tree.
func NewFromMap(values map[string]any) hive.Properties {
	v := viper.New()
	for key, value := range values {
		v.Set(key, value)
	}
	return fromViper(v)
}
