/*
Package labels implements the label registry: an authoritative in-memory
store of user-defined labels with a normalized-name index and debounced
persistence.

Every label has a stable slug identifier and a display name that is unique
after normalization (case folding and whitespace removal). The registry keeps
two maps in lockstep:

	labels:    id             -> Entry
	nameIndex: normalizedName -> id

Lifecycle:

	reg := labels.New(store,
	    labels.WithPublisher(broker),
	    labels.WithReferenceCleaners(devices, entities),
	)
	if err := reg.Load(ctx); err != nil { ... }
	defer reg.Close(ctx)

	work, err := reg.Create("Work", labels.WithColor("indigo"))
	_, err = reg.Update(work.ID, labels.UpdateFields{
	    Icon: labels.SetTo(labels.Some("mdi:briefcase")),
	})

Updates use Field values: a zero Field leaves the attribute unchanged, SetTo
replaces it. An update that changes nothing is a no-op and neither saves nor
publishes.

Each accepted mutation schedules a delayed save through the Persister and
publishes one Event on the "label_registry_updated" topic. Deletion first
asks every ReferenceCleaner to drop the label id.
*/
package labels
