package models

// DefaultCharset is used when the settings file declares no table charset.
const DefaultCharset = "utf8"

type ConnectionProfile struct {
	Host     string `json:"host"`
	Name     string `json:"name"`
	User     string `json:"user"`
	Password string `json:"-"`
	Charset  string `json:"charset"`
}

func (p ConnectionProfile) HostOrDefault() string {
	if p.Host == "" {
		return "localhost"
	}
	return p.Host
}

func (p ConnectionProfile) CharsetOrDefault() string {
	if p.Charset == "" {
		return DefaultCharset
	}
	return p.Charset
}
