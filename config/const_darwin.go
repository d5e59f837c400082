package config

const (
	_etc = "/usr/local/etc/com.github.tpp-lora"
	_var = "/usr/local/var/com.github.tpp-lora"

	DEFAULT_CONFIG      = _etc + "/lora-app-sheets.yaml"
	DEFAULT_CREDENTIALS = _etc + "/.google/credentials.json"
	DEFAULT_TOKENS      = _var + "/.google"
)
