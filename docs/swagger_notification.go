package docs

// @title           Niva Notification Service API
// @version         1.0
// @description     Delivers SMS, WhatsApp and email messages to trusted contacts through Twilio and SMTP.

// @contact.name   Niva Team
// @contact.email  support@niva.app

// @host      localhost:3001
// @BasePath  /

// @securityDefinitions.apikey ApiKeyAuth
// @in header
// @name X-API-Key
