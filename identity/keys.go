package identity

func accountKey(projectID, accountID string) string {
	return "identity/account/" + projectID + "/" + accountID
}

func accountProjectPrefix(projectID string) string {
	return "identity/account/" + projectID + "/"
}

func keyKey(accountID, keyID string) string {
	return "identity/key/" + accountID + "/" + keyID
}

func keyAccountPrefix(accountID string) string {
	return "identity/key/" + accountID + "/"
}

func policyKey(resourcePath string) string {
	return "identity/policy/" + resourcePath
}
