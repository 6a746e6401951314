// Package ui provides terminal output, desktop notifications, and the
// operator prompt used during block recovery.
// This file demonstrates example usage of the UI components
package ui

/*
Example usage of the UI components:

// Terminal colors and output
ui.PrintLogo()                                   // Print ASCII logo
ui.PrintInfo("Checkpoint", "instagram_counts.csv")
ui.PrintSuccess("Harvest completed")             // Green success message
ui.PrintError("Search failed", err)              // Red error message
ui.PrintWarning("Challenge page detected")       // Yellow warning message
ui.SetQuietMode(true)                            // Suppress decorative output

// Progress tracking across a pass
tracker := ui.NewTracker(len(subjects))
tracker.PrintSubject(0, "Alice Example")
tracker.Record(true)                             // One subject filled
tracker.PrintOutcome("320", "714")
tracker.PrintSummary()

// Notifications (cross-platform)
notifier := ui.NewNotifier("desktop", true)
notifier.SendNotification("Challenge detected", "Solve it in the browser, then press Enter")
notifier.SendSuccess("Done", "Harvest finished")

// Operator acknowledgement (blocks until Enter or ctx cancel)
err := ui.PromptEnter(ctx, "Press Enter once the challenge is solved...")

// Direct color usage
fmt.Printf("%s: %s\n", ui.Cyan("Subject"), ui.Yellow("Alice Example"))
fmt.Println(ui.Green("✓ saved"))
*/
