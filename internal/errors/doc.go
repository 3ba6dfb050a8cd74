// Package errors provides structured, actionable error messages for modbuild.
//
// Every error carries a short code (e.g., "E121") that maps to a registered
// message and category. Call sites attach the specifics:
//
//	err := errors.New("E121").
//	    WithDetail("gradlew exited with status 1").
//	    WithSuggestion("Re-run with --verbose to see the full Gradle output").
//	    Wrap(runErr)
//
//	errors.PrintError(err)
//	// Output:
//	// ERROR E121: Gradle build failed
//	//
//	//   gradlew exited with status 1
//	//
//	//   Hint: Re-run with --verbose to see the full Gradle output
//
// # Categories
//
//   - config: build_config.json and gradle.properties problems (recovered)
//   - invocation: the Gradle wrapper is missing or the build failed (fatal)
//   - artifact: a target produced no usable jar, or a copy failed (recovered)
//   - archive: archive and mirror writes (recovered)
//   - cleanup: build folder removal (recovered)
//   - server: the archive browser
package errors
