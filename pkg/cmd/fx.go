package cmd

import "go.uber.org/fx"

var Module = fx.Module("cli",
	fx.Provide(
		fx.Annotate(analyticsCmd, fx.ResultTags(`group:"commands"`)),
		fx.Annotate(decommissionCmd, fx.ResultTags(`group:"commands"`)),
		fx.Annotate(pipelineCmd, fx.ResultTags(`group:"commands"`)),
		fx.Annotate(provisionCmd, fx.ResultTags(`group:"commands"`)),
	),
	fx.Invoke(Run),
)
