package domain

import "time"

type TopicType struct {
	Key    string   `json:"key"`
	Name   string   `json:"name"`
	Topics []string `json:"topics"`
}

const PrepDuration = 30 * time.Second

// DiscussionDurations in seconds, as offered by the room setup form.
var DiscussionDurations = []int{300, 600, 900, 1200}

var topicCatalog = []TopicType{
	{
		Key:  "technical",
		Name: "Technical",
		Topics: []string{
			"Impact of AI on Future Jobs",
			"Cybersecurity Challenges",
			"Cloud Computing vs Edge Computing",
			"Future of 5G Technology",
			"Blockchain Applications",
		},
	},
	{
		Key:  "hr",
		Name: "HR",
		Topics: []string{
			"Remote Work Culture",
			"Employee Well-being",
			"Diversity in Workplace",
			"Future of Recruitment",
			"Work-Life Balance",
		},
	},
	{
		Key:  "current_affairs",
		Name: "Current Affairs",
		Topics: []string{
			"Digital Privacy Concerns",
			"Climate Change Impact",
			"Global Economic Trends",
			"Social Media Influence",
			"Education System Changes",
		},
	},
	{
		Key:  "management",
		Name: "Management",
		Topics: []string{
			"Leadership in Crisis",
			"Change Management",
			"Team Building Strategies",
			"Project Management Methods",
			"Innovation Management",
		},
	},
}

func TopicCatalog() []TopicType {
	out := make([]TopicType, len(topicCatalog))
	for i, t := range topicCatalog {
		t.Topics = append([]string(nil), t.Topics...)
		out[i] = t
	}
	return out
}

func LookupTopicType(key string) (TopicType, bool) {
	for _, t := range topicCatalog {
		if t.Key == key {
			return t, true
		}
	}
	return TopicType{}, false
}
