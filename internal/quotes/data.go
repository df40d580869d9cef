package quotes

var defaultQuotes = []Quote{
	{Text: "You look like someone who knows where their towel is"},
	{Text: "Some people can be Aragorn. Everyon can be Samwise."},
	{Text: "Up, up, down down, left right, left right, B A Start."},
	{Text: "Up, up and away!"},
	{Text: "It's dangerous to go alone! Take this."},
	{Text: "Happiness is a direction, not a place"},
	{Text: "May the Force be with you"},
	{Text: "Live long and prosper"},
	{Text: "Every day, someone is the happiest person in the world."},
	{Text: "It makes me very happy that you took the time to read this. Thank you."},
	{Text: "The better you get at something, the smaller details you worry about"},
	{Text: "First step towards excellence is to be really, horribly bad at something"},
	{Text: "Do not mistake motion for action"},
	{Text: "The journey of a thousand miles begins with one step.", Author: "Lao Tzu"},
	{Text: "Do not mistake kindness for weakness"},
	{Text: "In the middle of difficulty lies opportunity.", Author: "Albert Einstein"},
	{Text: "It is during our darkest moments that we must focus to see the light.", Author: "Aristotle"},
	{Text: "Be the change you wish to see in the world.", Author: "Mahatma Gandhi"},
	{Text: "Happiness is not something ready made. It comes from your own actions.", Author: "Dalai Lama"},
	{Text: "The best time to plant a tree was 20 years ago. The second best time is now.", Author: "Chinese Proverb"},
	{Text: "Every accomplishment starts with the decision to try.", Author: "John F. Kennedy"},
	{Text: "You learn more from failure than from success."},
	{Text: "Believe in yourself. You are braver than you believe, stronger than you seem, and smarter than you think.", Author: "A.A. Milne"},
	{Text: "Great things never came from comfort zones."},
	{Text: "You are never too old to set another goal or to dream a new dream.", Author: "C.S. Lewis"},
	{Text: "Great success is built on great failure."},
	{Text: "Don't stop when you are tired. Stop when you are done."},
	{Text: "Do something today that your future self will thank you for.", Author: "Sean Patrick Flanery"},
	{Text: "The only person you should try to be better than is the person you were yesterday."},
	{Text: "No act of kindness, no matter how small, is ever wasted.", Author: "Aesop"},
	{Text: "The world is full of kind people. If you can't find one, be one."},
}
