package docs

// @title           Niva Authentication Service API
// @version         1.0
// @description     Registration, login, token refresh and profile. Issues the JWTs accepted by the companion service.

// @contact.name   Niva Team
// @contact.email  support@niva.app

// @host      localhost:3005
// @BasePath  /

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and JWT token.
