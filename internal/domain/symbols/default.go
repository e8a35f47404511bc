package symbols

import "github.com/okian/gazeboard/internal/domain/model"

// Default returns the built-in catalog.
func Default() *Catalog {
	c, err := New(defaultCategories()...)
	if err != nil {
		panic(err)
	}
	return c
}

func defaultCategories() []Category {
	return []Category{
		{
			Name: "Home",
			Rows: model.Grid{
				{"Yes", "No", "Please", "OK", "I", "You", "Want", "Stop"},
				{"It", "Will", "Feel", "Think", "Quick", "To", "Topics", "Actions"},
				{"Eat", "Drink", "Hungry", "Thirsty", "Apple", "Bread", "Water", "Juice"},
				{"Breakfast", "Lunch", "Dinner", "Snack", "More", "Less", "Finish", "Delicious"},
				{"Help", "Run", "Walk", "Sit", "Go", "Come", "Look", "Talk"},
				{"🎵", "⚽", "🏠", "✈️", "🔑", "🕰️", "💡", "🔒"},
			},
		},
		{
			Name: "Action",
			Rows: model.Grid{
				{"🏃", "🚶", "🗣️", "🤔", "😴", "💪", "🎧", "📝"},
				{"🙋", "🤝", "💃", "🕺", "🚗", "🏀", "⚽", "🏋️"},
				{"🏖️", "🏕️", "💼", "🎮", "💻", "📞", "💼", "🖥️"},
				{"🛀", "🛍️", "🎨", "🎤", "🎬", "🎯", "🎸", "🛠️"},
				{"🔧", "🔨", "🧩", "🎮", "📚", "📖", "📅", "🛠️"},
				{"🤽‍♂️", "🏃‍♀️", "⛹️‍♂️", "🤺", "🧘‍♂️", "🎻", "🎧", "🎼"},
			},
		},
		{
			Name: "Emotions",
			Rows: model.Grid{
				{"😊", "😢", "😠", "😱", "😅", "😎", "🥺", "😍"},
				{"🤔", "😜", "😤", "😇", "😒", "🥳", "😴", "😷"},
				{"🤩", "😜", "🤪", "😏", "😑", "🤮", "🤬", "😌"},
				{"🥺", "😬", "🥳", "😌", "😩", "🤗", "😭", "😡"},
				{"🥲", "🫣", "😏", "😣", "😓", "😕", "😶", "😝"},
				{"🙃", "🥱", "😓", "😔", "😙", "😊", "😖", "😌"},
			},
		},
		{
			Name: "Words",
			Rows: model.Grid{
				{"I", "You", "He", "She", "We", "They", "It", "Me"},
				{"This", "That", "Here", "There", "What", "When", "Where", "Why"},
				{"How", "Which", "Why", "Who", "Do", "Does", "Can", "Will"},
				{"Yes", "No", "Please", "Thanks", "Help", "Stop", "Go", "Come"},
				{"Want", "Need", "Like", "Love", "Hate", "Feel", "Think", "Say"},
				{"Start", "Finish", "Begin", "End", "Try", "Work", "Play", "Walk"},
				{"Look", "See", "Hear", "Feel", "Smell", "Touch", "Taste", "Speak"},
			},
		},
		{
			Name: "Food",
			Rows: model.Grid{
				{"🍕", "🍔", "🍝", "🍟", "🥗", "🍲", "🍣", "🌮"},
				{"🍚", "🍞", "🍜", "🍗", "🥩", "🐟", "🍳", "🧀"},
				{"🍎", "🍌", "🍊", "🥭", "🍇", "🍉", "🍍", "🍓"},
				{"🥕", "🥒", "🥬", "🍅", "🧅", "🧄", "🥔", "🌶️"},
				{"🍰", "🍨", "🥧", "🍪", "🍫", "🍩", "🧁", "🍫"},
				{"🧃", "🥤", "🍵", "☕", "🥛", "💧", "🍷", "🍺"},
			},
		},
	}
}
