package types

const (
	ActionRabbitMQConnected       = "rabbitmq_connected"
	ActionRabbitConnectionClosed  = "rabbitmq_connection_closed"
	ActionRabbitConnectionClosing = "rabbitmq_connection_closing"
	ActionRabbitReconnected       = "rabbitmq_reconnection_success"

	ActionDatabaseTransactionFailed = "database_transaction_failed"
	ActionExternalServiceFailed     = "external_service_failed"

	ActionRegister       = "user_register"
	ActionLogin          = "user_login"
	ActionGenerateTokens = "generate_tokens"
	ActionRefreshToken   = "refresh_token"

	ActionEngineTick        = "engine_tick"
	ActionEngineStarted     = "engine_started"
	ActionAlertPublished    = "alert_published"
	ActionAlertConsumed     = "alert_consumed"
	ActionNotificationSent  = "notification_sent"
	ActionNotificationError = "notification_failed"
)
