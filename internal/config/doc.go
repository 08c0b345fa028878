// Package config loads the edupulse project configuration.
//
// Configuration is layered with github.com/spf13/viper:
//  1. Built-in defaults matching the classic setup.bat and run.bat layout
//     (venv / requirements.txt / main.py)
//  2. An optional project file: edupulse.yaml, edupulse.yml,
//     edupulse.json or edupulse.jsonc in the project directory
//  3. EDUPULSE_<KEY> environment variables
//
// JSON project files may contain comments and trailing commas; they are
// normalized with github.com/tidwall/jsonc before viper parses them.
package config
