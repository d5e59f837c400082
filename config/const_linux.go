package config

const (
	_etc = "/usr/local/etc/lora"
	_var = "/usr/local/var/lora"

	DEFAULT_CONFIG      = _etc + "/lora-app-sheets.yaml"
	DEFAULT_CREDENTIALS = _etc + "/.google/credentials.json"
	DEFAULT_TOKENS      = _var + "/.google"
)
