package docs

// @title           Niva Companion Service API
// @version         1.0
// @description     Trusted contacts, saved routes, custom sessions and companion sessions with adaptive check-ins.
// @description     Live updates are pushed over GET /ws/users/{user_id}.

// @contact.name   Niva Team
// @contact.email  support@niva.app

// @host      localhost:3000
// @BasePath  /

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and JWT token.
