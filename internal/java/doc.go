// Package java checks for the Java runtime and runs external processes.
//
// # Runtime Check
//
//	checker := java.NewChecker("java", java.ExecRunner{}, logger)
//	res := checker.Check(ctx)
//	if !res.Present {
//	    // ask the operator to install Java
//	}
//	fmt.Println(res.Version) // "openjdk 17.0.8 2023-07-18"
//
// # Running Installers
//
// Runner is shared with the loader installers, which spawn installer jars
// through it:
//
//	out, err := runner.Run(ctx, "java", "-jar", installerPath)
package java
