package config

var (
	ParseLevel  = parseLevel
	ParseFormat = parseFormat
)
