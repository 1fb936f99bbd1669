package render

import (
	"gopkg.in/yaml.v3"

	"github.com/nachoparker/dutree/pkg/logger"
	"github.com/nachoparker/dutree/pkg/tree"
)

func (f *formatter) formatYAML(forest tree.Forest) (string, error) {
	bytes, err := yaml.Marshal(f.buildDocument(forest))
	if err != nil {
		f.log.WithFields(logger.Fields{
			"error": err.Error(),
		}).Error("failed to marshal YAML")
		return "", err
	}
	return string(bytes), nil
}
