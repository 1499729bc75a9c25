package app

import "fmt"

type Variant string

const (
	VariantDefault     Variant = "default"
	VariantDestructive Variant = "destructive"
)

// Notice is a short user-facing message the view layer shows after an
// operation.
type Notice struct {
	Title       string  `json:"title"`
	Description string  `json:"description"`
	Variant     Variant `json:"variant"`
}

func (n Notice) String() string {
	if n.Description == "" {
		return n.Title
	}
	return fmt.Sprintf("%s: %s", n.Title, n.Description)
}

func noticeLoginSuccessful() Notice {
	return Notice{Title: "Login Successful", Description: "Welcome to Employee Management System", Variant: VariantDefault}
}

func noticeLoginFailed() Notice {
	return Notice{Title: "Login Failed", Description: "Invalid username or password. Try admin/password", Variant: VariantDestructive}
}

func noticeLoggedOut() Notice {
	return Notice{Title: "Logged Out", Description: "You have been signed out.", Variant: VariantDefault}
}

func noticeEmployeeAdded(name string) Notice {
	return Notice{Title: "Employee Added", Description: fmt.Sprintf("%s has been successfully added to the system.", name), Variant: VariantDefault}
}

func noticeEmployeeUpdated(name string) Notice {
	return Notice{Title: "Employee Updated", Description: fmt.Sprintf("%s has been successfully updated.", name), Variant: VariantDefault}
}

func noticeEmployeeDeleted(name string) Notice {
	return Notice{Title: "Employee Deleted", Description: fmt.Sprintf("%s has been removed from the system.", name), Variant: VariantDefault}
}

func noticeDataRefreshed() Notice {
	return Notice{Title: "Data Refreshed", Description: "Employee list has been updated.", Variant: VariantDefault}
}

func noticeLoadFailed() Notice {
	return Notice{Title: "Load Failed", Description: "Stored employee data could not be read.", Variant: VariantDestructive}
}

func noticeSaveFailed() Notice {
	return Notice{Title: "Error", Description: "Failed to save employee data. Please try again.", Variant: VariantDestructive}
}

func noticeInvalidForm() Notice {
	return Notice{Title: "Invalid Form", Description: "Please fill in all required fields.", Variant: VariantDestructive}
}
