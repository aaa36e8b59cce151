package fx

import "go.uber.org/fx"

// CoreModule reúne configuração, infraestrutura e domínio, sem o servidor HTTP.
var CoreModule = fx.Options(
	ConfigModule,
	InfrastructureModule,
	DomainModule,
)

// AppModule reúne todos os módulos da aplicação
var AppModule = fx.Options(
	CoreModule,
	MiddlewareModule,
	RoutesModule,
	ServerModule,
)
