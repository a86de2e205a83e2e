package conf

type Bootstrap struct {
	Server *Server
	Panel  *Panel
}

type Server struct {
	Http *HTTP
}

type HTTP struct {
	Addr    string
	Timeout string
}

type Panel struct {
	Llm         *LLM         `json:"llm"`
	Data        *Data        `json:"data"`
	Meeting     *Meeting     `json:"meeting"`
	Chart       *Chart       `json:"chart"`
	Log         *Log         `json:"log"`
	Concurrency *Concurrency `json:"concurrency"`
	Db          *DB          `json:"db"`
}

type LLM struct {
	Provider string `json:"provider"`
	BaseUrl  string `json:"base_url"`
	ApiKey   string `json:"api_key"`
	Model    string `json:"model"`
}

type Data struct {
	ExcerptBudget int32 `json:"excerpt_budget"`
}

type Meeting struct {
	SummaryLimit   int32  `json:"summary_limit"`
	StepResetDelay string `json:"step_reset_delay"`
}

type Chart struct {
	Width  int32 `json:"width"`
	Height int32 `json:"height"`
}

type Log struct {
	Level string `json:"level"`
	File  string `json:"file"`
}

type Concurrency struct {
	Qps int32 `json:"qps"`
	Rpm int32 `json:"rpm"`
}

type DB struct {
	Driver   string `json:"driver"`
	Source   string `json:"source"`
	Host     string `json:"host"`
	Port     int32  `json:"port"`
	User     string `json:"user"`
	Password string `json:"password"`
	Name     string `json:"name"`
}
