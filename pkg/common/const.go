package common

const (
	KEY_ORGANIZATION_PLAN = "organization_plan:%s"
	KEY_DISCOVERY_RESULT  = "discovery:%s:%d"
)

const (
	KEY_LOG_HOOK_SEND_ALERT = "send_alert"
)

const (
	CTX_KEY_USER = "user"
)
