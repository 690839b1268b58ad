package operations

func operationKey(projectID, id string) string {
	return "operations/" + projectID + "/" + id
}

func operationProjectPrefix(projectID string) string {
	return "operations/" + projectID + "/"
}
