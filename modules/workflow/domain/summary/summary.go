// Package summary renders the human-readable digest attached to a
// request when it is submitted. The output is deterministic for a given
// input so regenerating a digest never produces spurious diffs.
package summary

import (
	"fmt"
	"sort"
	"strings"

	"github.com/dbp-hq/governance/modules/workflow/domain/aggregates/request"
)

const notRegistered = "(not registered)"

// Person is a display name plus email. Either part may be empty.
type Person struct {
	Name  string
	Email string
}

func (p Person) IsZero() bool {
	return p.Name == "" && p.Email == ""
}

func (p Person) render() string {
	switch {
	case p.IsZero():
		return notRegistered
	case p.Email == "":
		return p.Name
	case p.Name == "":
		return p.Email
	default:
		return fmt.Sprintf("%s (%s)", p.Name, p.Email)
	}
}

type DatasetLine struct {
	Name string
	Code string
}

// AppOwnerLine groups the applications a single owner is responsible for.
type AppOwnerLine struct {
	Owner    Person
	AppNames []string
}

type Input struct {
	RequesterHandle  string
	Type             request.Type
	GroupName        string
	NewGroupName     string
	NewGroupOwner    Person
	NewGroupManager  Person
	Datasets         []DatasetLine
	ApplicationNames []string
	Members          []Person
	GroupOwner       Person
	DataManager      Person
	DBPManager       Person
	AppOwners        []AppOwnerLine
	Reason           string
}

var typeLabels = map[request.Type]string{
	request.TypeDatasetAccess:       "Dataset access",
	request.TypeRemoveDatasetAccess: "Dataset access removal",
	request.TypeAddMembers:          "Member addition",
	request.TypeRemoveMembers:       "Member removal",
	request.TypeCreateGroup:         "Group creation",
	request.TypeRemoveGroup:         "Group removal",
}

// Render produces the digest text. Lists are sorted alphabetically and
// numbered from one.
func Render(in Input) string {
	var b strings.Builder

	writeField(&b, "Requester", orElse(in.RequesterHandle, notRegistered))
	writeField(&b, "Request type", typeLabels[in.Type])

	switch in.Type {
	case request.TypeCreateGroup:
		writeField(&b, "New group", orElse(in.NewGroupName, notRegistered))
		writeField(&b, "Group owner", in.NewGroupOwner.render())
		writeField(&b, "DBP manager", in.NewGroupManager.render())
	case request.TypeRemoveGroup:
		writeField(&b, "Target group", orElse(in.GroupName, notRegistered))
		writeField(&b, "Group owner", in.GroupOwner.render())
		writeField(&b, "DBP manager", in.DBPManager.render())
	case request.TypeAddMembers, request.TypeRemoveMembers:
		writeField(&b, "Target group", orElse(in.GroupName, notRegistered))
		writeMembers(&b, in.Members)
		writeField(&b, "Group owner", in.GroupOwner.render())
		writeField(&b, "Data manager", in.DataManager.render())
		writeField(&b, "DBP manager", in.DBPManager.render())
	default:
		writeField(&b, "Target group", orElse(in.GroupName, notRegistered))
		writeDatasets(&b, in.Datasets)
		writeApplications(&b, in.ApplicationNames)
		writeField(&b, "Group owner", in.GroupOwner.render())
		writeField(&b, "Data manager", in.DataManager.render())
		writeAppOwners(&b, in.AppOwners)
		writeField(&b, "DBP manager", in.DBPManager.render())
	}

	if in.Reason != "" {
		writeField(&b, "Reason", in.Reason)
	}
	return strings.TrimRight(b.String(), "\n")
}

func writeField(b *strings.Builder, label, value string) {
	fmt.Fprintf(b, "%s: %s\n", label, value)
}

func writeDatasets(b *strings.Builder, datasets []DatasetLine) {
	b.WriteString("Requested datasets:\n")
	if len(datasets) == 0 {
		b.WriteString(notRegistered + "\n")
		return
	}
	sorted := make([]DatasetLine, len(datasets))
	copy(sorted, datasets)
	sort.Slice(sorted, func(i, j int) bool {
		if sorted[i].Name != sorted[j].Name {
			return sorted[i].Name < sorted[j].Name
		}
		return sorted[i].Code < sorted[j].Code
	})
	for i, d := range sorted {
		fmt.Fprintf(b, "%d. %s (%s)\n", i+1, d.Name, d.Code)
	}
}

func writeApplications(b *strings.Builder, names []string) {
	b.WriteString("Related applications:\n")
	if len(names) == 0 {
		b.WriteString(notRegistered + "\n")
		return
	}
	sorted := make([]string, len(names))
	copy(sorted, names)
	sort.Strings(sorted)
	for i, name := range sorted {
		fmt.Fprintf(b, "%d. %s\n", i+1, name)
	}
}

func writeMembers(b *strings.Builder, members []Person) {
	b.WriteString("Members:\n")
	if len(members) == 0 {
		b.WriteString(notRegistered + "\n")
		return
	}
	sorted := make([]Person, len(members))
	copy(sorted, members)
	sort.Slice(sorted, func(i, j int) bool {
		if sorted[i].Name != sorted[j].Name {
			return sorted[i].Name < sorted[j].Name
		}
		return sorted[i].Email < sorted[j].Email
	})
	for i, m := range sorted {
		fmt.Fprintf(b, "%d. %s\n", i+1, m.render())
	}
}

func writeAppOwners(b *strings.Builder, owners []AppOwnerLine) {
	b.WriteString("App owners:\n")
	if len(owners) == 0 {
		b.WriteString(notRegistered + "\n")
		return
	}
	sorted := make([]AppOwnerLine, len(owners))
	copy(sorted, owners)
	sort.Slice(sorted, func(i, j int) bool {
		return sorted[i].Owner.Email < sorted[j].Owner.Email
	})
	for _, o := range sorted {
		apps := make([]string, len(o.AppNames))
		copy(apps, o.AppNames)
		sort.Strings(apps)
		fmt.Fprintf(b, "%s - %s\n", o.Owner.render(), strings.Join(apps, ", "))
	}
}

func orElse(value, fallback string) string {
	if value == "" {
		return fallback
	}
	return value
}
