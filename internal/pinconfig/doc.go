// Package pinconfig applies declarative pin profiles to Firmata boards.
//
// A profile is a YAML document that lists the mode, output value, and
// reporting flag for each pin, plus an optional analog sampling interval.
// The package parses and validates profiles, translates them into the
// client's pin operations, verifies that the board took the writes, and
// can snapshot pin states for rollback when an apply goes wrong.
//
// # Profile Format
//
// Profiles identify pins by their digital pin number, including analog
// pins (an Uno's A0 is pin 14). A minimal profile:
//
//	name: blinker
//	sampling_interval_ms: 50
//	pins:
//	  - pin: 13
//	    mode: output
//	    value: 1
//	  - pin: 2
//	    mode: input
//	    report: true
//	  - pin: 14
//	    mode: analog
//	    report: true
//
// # Usage Example
//
//	// Connect and start the client first
//	client := firmata.New(conn)
//	if err := client.Start(); err != nil {
//	    log.Fatal(err)
//	}
//
//	profile, err := pinconfig.LoadProfile("blinker.yaml")
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	applier := pinconfig.NewApplier(client)
//	result := applier.ApplyAndVerify(profile, nil)
//	if !result.Success {
//	    log.Fatalf("Apply failed: %v", result.Error)
//	}
//
// # Safe Applies with Rollback
//
// The RollbackManager snapshots pin states before an apply and restores
// them when verification fails:
//
//	rm := pinconfig.NewRollbackManager(applier)
//
//	result := rm.SafeApply(profile, nil, "Apply blinker profile")
//	if !result.Success {
//	    if result.RollbackSucceeded {
//	        log.Printf("Apply failed but pin states were restored")
//	    } else {
//	        log.Printf("Apply AND rollback failed: %v", result.Error)
//	    }
//	}
//
// # Verification
//
// The ApplyAndVerify method verifies profile changes by:
//  1. Sending the mode, value, and reporting writes
//  2. Waiting for the board to settle
//  3. Querying every pin's state back
//  4. Comparing expected vs. reported modes and values
//  5. Retrying up to 3 times if verification fails
//
// Pin state reports carry no reporting flags, so reporting changes are
// applied but never verified or rolled back.
//
// # Thread Safety
//
// Applier and RollbackManager instances are safe for concurrent use. The
// analog mapping cache and snapshot list use internal locking.
package pinconfig
