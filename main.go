package main

import (
	"context"

	"go.viam.com/rdk/components/servo"
	"go.viam.com/rdk/logging"
	"go.viam.com/rdk/module"
	"go.viam.com/rdk/services/generic"
	"go.viam.com/utils"

	"robot-arm/arm"
	simservo "robot-arm/sim-servo"
)

func main() {
	utils.ContextualMain(mainWithArgs, module.NewLoggerFromArgs("robot-arm"))
}

func mainWithArgs(ctx context.Context, args []string, logger logging.Logger) error {
	module, err := module.NewModuleFromArgs(ctx)
	if err != nil {
		return err
	}

	err = module.AddModelFromRegistry(ctx, generic.API, arm.Model)
	if err != nil {
		return err
	}

	err = module.AddModelFromRegistry(ctx, servo.API, simservo.Model)
	if err != nil {
		return err
	}

	err = module.Start(ctx)
	defer module.Close(ctx)
	if err != nil {
		return err
	}

	<-ctx.Done()
	return nil
}
