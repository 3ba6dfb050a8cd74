// Package gradle runs the project's Gradle wrapper.
//
// The wrapper is resolved from the project root (gradlew.bat on Windows,
// gradlew elsewhere) and invoked once, synchronously, with the tasks of the
// selected targets. Output is captured in full. A missing wrapper or a
// non-zero exit status is returned as a fatal error; there are no retries
// and no timeout.
//
// # Usage
//
//	inv := gradle.New(cfg.Root(), gradle.Options{Verbose: true})
//	res, err := inv.Run(ctx, cfg.EffectiveTargets(), cfg.Targets())
//	if err != nil {
//	    errors.PrintError(err)
//	    os.Exit(1)
//	}
//	fmt.Println(strings.Join(res.Command, " "))
package gradle
